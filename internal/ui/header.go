package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdesk/internal/notify"
)

// renderHeader renders the status bar: brand, session, wishlist and
// connection state.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	brand := "shopdesk"
	if logo := m.snapshot.Feed.Logo; logo != nil && strings.TrimSpace(logo.Name) != "" {
		brand = logo.Name
	}
	parts := []string{bg.Render(truncate(brand, 24), styles.Logo)}

	if m.auth.Session != nil {
		if u, ok := m.auth.Session.User(); ok {
			name := u.Name
			if name == "" {
				name = u.Username
			}
			parts = append(parts, bg.Render("●", styles.SuccessText)+bg.Space()+bg.Render(truncate(name, 20), styles.Text))
			if u.IsAdmin {
				parts = append(parts, styles.StatusStyle("admin").Render("ADMIN"))
			}
		} else {
			parts = append(parts, bg.Render("○ Khách", styles.MutedText))
		}
	}

	if m.wishlist != nil {
		parts = append(parts,
			bg.Render("♥", styles.DangerText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", m.wishlist.Len()), styles.Text))
	}

	parts = append(parts, m.connectionStatus(styles, bg))

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// connectionStatus summarizes the last feed refresh.
func (m Model) connectionStatus(styles Styles, bg bgStyle) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		last := "chưa có dữ liệu"
		if !snap.LastUpdated.IsZero() {
			last = snap.LastUpdated.Format("15:04:05")
		}
		return bg.Render("MẤT KẾT NỐI", styles.DangerText.Bold(true)) + bg.Space() +
			bg.Render(truncate(notify.Friendly(snap.LastError), 60), styles.WarningText) + bg.Space() +
			bg.Render(last, styles.MutedText)
	case !snap.HasFeed && snap.LastError == nil:
		return bg.Render("Đang kết nối...", styles.WarningText.Bold(true))
	case snap.LastError != nil:
		return bg.Render("Cập nhật một phần", styles.WarningText) + bg.Space() +
			bg.Render(formatClock(snap.LastUpdated), styles.MutedText)
	default:
		return bg.Render("Cập nhật", styles.FaintText) + bg.Space() +
			bg.Render(formatClock(snap.LastUpdated), styles.MutedText)
	}
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

// renderCommandBar renders the view tabs and the main keys of the current
// view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := newBgStyle(m.theme.Background)

	var tabs []string
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
			continue
		}
		tabs = append(tabs, bg.Render(" "+label+" ", styles.MutedText))
	}

	hints := m.viewHints()
	if m.width < LayoutCompactWidth && len(hints) > 3 {
		hints = hints[:3]
	}
	var rendered []string
	for _, h := range hints {
		rendered = append(rendered, bg.Render(h[0], styles.AccentText)+bg.Space()+bg.Render(h[1], styles.FaintText))
	}

	line := bg.Join(tabs, "") + bg.Spaces(2) + bg.Join(rendered, "  ")
	return bg.FillLine(line, m.width)
}

func (m Model) viewHints() [][2]string {
	switch m.currentView {
	case ViewHome:
		return [][2]string{{"j/k", "chọn"}, {"w", "yêu thích"}, {"R", "tải lại"}, {"h", "trợ giúp"}}
	case ViewSearch:
		return [][2]string{{"/", "tìm"}, {"s", "sắp xếp"}, {"m", "tải thêm"}, {"w", "yêu thích"}}
	case ViewWishlist:
		return [][2]string{{"d", "bỏ thích"}, {"r", "đồng bộ"}, {"j/k", "chọn"}}
	case ViewAdmin:
		hints := [][2]string{{"[ ]", "tab"}, {"x", "đổi trạng thái"}, {"Space", "chọn"}, {"X", "áp dụng"}}
		if m.console.tab == tabOrders {
			hints = [][2]string{{"[ ]", "tab"}, {"a", "chuyển bước"}, {"C", "hủy"}, {"f", "lọc"}, {"s", "sắp xếp"}}
		}
		return hints
	case ViewLogs:
		return [][2]string{{"Space", "theo dõi"}, {"f", "mức"}, {"/", "lọc"}}
	}
	return nil
}

// renderToasts renders the active notifications on the last line.
func (m Model) renderToasts() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)

	active := m.toasts.Active(time.Now())
	if len(active) == 0 {
		return styles.Footer.Width(m.width).Render(bg.Render("h trợ giúp • L đăng nhập • e thoát", styles.FaintText))
	}
	// Newest last; show as many as fit.
	var parts []string
	for i := len(active) - 1; i >= 0 && len(parts) < 3; i-- {
		t := active[i]
		style := styles.InfoText
		icon := "ℹ"
		if t.Level == notify.LevelError {
			style = styles.DangerText
			icon = "✖"
		}
		parts = append(parts, bg.Render(icon+" "+truncate(t.Message, 80), style))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "   "))
}

// renderBox draws content inside a rounded border with a title on the top
// edge.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height)

	rendered := box.Render(content)
	if title == "" {
		return rendered
	}
	lines := strings.SplitN(rendered, "\n", 2)
	label := " " + title + " "
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(border))
	fill := max(width-lipgloss.Width(label)-3, 0)
	lines[0] = edge.Render("╭─") + titleStyle.Render(label) + edge.Render(strings.Repeat("─", fill)+"╮")
	return strings.Join(lines, "\n")
}
