package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopdesk/internal/shopapi"
)

type homeState struct {
	selected int
}

// homeProducts is the selectable product list of the home view: newest
// first, then hot sale.
func (m Model) homeProducts() []shopapi.Product {
	feed := m.snapshot.Feed
	out := make([]shopapi.Product, 0, len(feed.Newest)+len(feed.HotSale))
	out = append(out, feed.Newest...)
	out = append(out, feed.HotSale...)
	return out
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products := m.homeProducts()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.home.selected = clampIndex(m.home.selected+1, len(products))
	case key.Matches(msg, m.keys.Up):
		m.home.selected = clampIndex(m.home.selected-1, len(products))
	case key.Matches(msg, m.keys.Top):
		m.home.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.home.selected = clampIndex(len(products)-1, len(products))
	case key.Matches(msg, m.keys.ToggleLike):
		if len(products) > 0 {
			m.toggleLike(products[clampIndex(m.home.selected, len(products))])
		}
	}
	return m, nil
}

// toggleLike adds or removes p from the wishlist and reports the result.
func (m Model) toggleLike(p shopapi.Product) {
	if m.wishlist == nil {
		return
	}
	liked, err := m.wishlist.Toggle(p)
	if err != nil {
		m.log.WithError(err).WithField("product", p.ID).Warn("wishlist toggle failed")
		m.toasts.Error("Không thể lưu danh sách yêu thích")
		return
	}
	if liked {
		m.toasts.Info("Đã thêm vào yêu thích: " + truncate(p.Name, 40))
	} else {
		m.toasts.Info("Đã bỏ yêu thích: " + truncate(p.Name, 40))
	}
}

// renderHome renders the storefront home feed.
func (m Model) renderHome() string {
	height := m.contentHeight()
	styles := m.theme.Styles()
	feed := m.snapshot.Feed

	if !m.snapshot.HasFeed {
		msg := "Đang tải trang chủ..."
		if m.snapshot.LastError != nil {
			msg = "Không tải được trang chủ. Nhấn R để thử lại."
		}
		return m.renderBox("Trang chủ", styles.MutedText.Render(msg), m.width, height, true)
	}

	var side strings.Builder
	side.WriteString(styles.AccentText.Bold(true).Render("Banner"))
	side.WriteString("\n")
	side.WriteString(m.renderSettingNames(feed.Banners))
	side.WriteString("\n")
	side.WriteString(styles.AccentText.Bold(true).Render("Slider"))
	side.WriteString("\n")
	side.WriteString(m.renderSettingNames(feed.Sliders))
	side.WriteString("\n")
	side.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Danh mục (%d)", len(feed.Categories))))
	side.WriteString("\n")
	for i, c := range feed.Categories {
		if i >= height-10 {
			side.WriteString(styles.FaintText.Render(fmt.Sprintf("  … và %d danh mục khác", len(feed.Categories)-i)))
			side.WriteString("\n")
			break
		}
		side.WriteString("  " + styles.Text.Render(truncate(c.Name, 24)) + " " + styles.FaintText.Render(c.TypeLabel()))
		side.WriteString("\n")
	}

	var main strings.Builder
	offset := 0
	main.WriteString(styles.AccentText.Bold(true).Render("Sản phẩm mới"))
	main.WriteString("\n")
	main.WriteString(m.renderProductRows(feed.Newest, offset, m.home.selected))
	offset += len(feed.Newest)
	main.WriteString("\n")
	main.WriteString(styles.AccentText.Bold(true).Render("Đang giảm giá"))
	main.WriteString("\n")
	main.WriteString(m.renderProductRows(feed.HotSale, offset, m.home.selected))

	if m.width < LayoutWideWidth {
		return m.renderBox("Trang chủ", main.String(), m.width, height, true)
	}
	sideWidth := m.width / 3
	left := m.renderBox("Giao diện", side.String(), sideWidth, height, false)
	right := m.renderBox("Trang chủ", main.String(), m.width-sideWidth, height, true)
	return joinColumns(left, right)
}

func (m Model) renderSettingNames(settings []shopapi.Setting) string {
	styles := m.theme.Styles()
	if len(settings) == 0 {
		return styles.FaintText.Render("  (trống)") + "\n"
	}
	var b strings.Builder
	for _, s := range settings {
		b.WriteString("  " + styles.Text.Render(truncate(s.Name, 28)))
		if len(s.Medias) > 0 {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf(" %d ảnh", len(s.Medias))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderProductRows renders products whose global index starts at offset,
// highlighting selected.
func (m Model) renderProductRows(products []shopapi.Product, offset, selected int) string {
	styles := m.theme.Styles()
	if len(products) == 0 {
		return styles.FaintText.Render("  Không có sản phẩm") + "\n"
	}
	nameWidth := max(m.width/2-20, 16)
	var b strings.Builder
	for i, p := range products {
		b.WriteString(m.productRow(p, nameWidth, offset+i == selected))
		b.WriteString("\n")
	}
	return b.String()
}

// productRow is one product line: like marker, name, price and stock.
func (m Model) productRow(p shopapi.Product, nameWidth int, selected bool) string {
	styles := m.theme.Styles()
	liked := m.wishlist != nil && m.wishlist.Has(p.ID)

	marker := ternary(liked, "♥", " ")
	name := padRight(truncate(p.Name, nameWidth), nameWidth)
	price := fmt.Sprintf("%14s", formatVND(p.EffectivePrice()))
	var row string
	if selected {
		row = styles.Selected.Render(marker + " " + name + " " + price)
	} else {
		row = styles.Liked.Render(marker) + " " + styles.Text.Render(name) + " " + styles.Price.Render(price)
	}
	if p.OnSale() {
		row += " " + styles.StatusStyle("sale").Render("SALE")
	}
	if p.Stock <= 0 {
		row += " " + styles.DangerText.Render("hết hàng")
	}
	return row
}

// joinColumns places two rendered blocks side by side.
func joinColumns(left, right string) string {
	l := strings.Split(left, "\n")
	r := strings.Split(right, "\n")
	n := max(len(l), len(r))
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i < len(l) {
			b.WriteString(l[i])
		}
		if i < len(r) {
			b.WriteString(r[i])
		}
		if i < n-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
