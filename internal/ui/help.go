package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	// Help content
	sections := []helpSection{
		{
			title: "Điều hướng",
			items: []helpItem{
				{"1-5", "Trang chủ/Tìm kiếm/Yêu thích/Quản trị/Nhật ký"},
				{"tab", "Chuyển màn hình"},
				{"esc", "Về trang chủ"},
				{"j/k", "Lên/xuống"},
				{"g/G", "Đầu/cuối danh sách"},
				{"ctrl+d/u", "Nửa trang xuống/lên"},
			},
		},
		{
			title: "Cửa hàng",
			items: []helpItem{
				{"/", "Tìm sản phẩm"},
				{"s", "Đổi cách sắp xếp"},
				{"m", "Tải thêm"},
				{"w", "Thêm/bỏ yêu thích"},
				{"d", "Bỏ khỏi yêu thích"},
				{"r", "Đồng bộ yêu thích"},
			},
		},
		{
			title: "Quản trị",
			items: []helpItem{
				{"[ ]", "Chuyển tab"},
				{"x", "Khóa/hiện/ẩn mục đang chọn"},
				{"Space", "Chọn nhiều"},
				{"X", "Áp dụng cho mục đã chọn"},
				{"c", "Xung đột logo"},
				{"a/C", "Chuyển bước/hủy đơn"},
				{"f", "Lọc trạng thái đơn"},
			},
		},
		{
			title: "Nhật ký",
			items: []helpItem{
				{"Space", "Bật/tắt theo dõi"},
				{"f", "Đổi mức tối thiểu"},
				{"/", "Lọc theo nội dung"},
			},
		},
		{
			title: "Chung",
			items: []helpItem{
				{"R", "Tải lại"},
				{"L", "Đăng nhập/đăng xuất"},
				{"T", "Đổi giao diện màu"},
				{"h/?", "Trợ giúp"},
				{"e/ctrl+c", "Thoát"},
			},
		},
	}

	// Build help content
	var b strings.Builder

	// Title
	title := styles.Text.Bold(true).Render("Phím tắt")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		// Section title
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			// Key
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(14)
			b.WriteString(keyStyle.Render(item.key))
			// Description
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	// Build the modal
	content := b.String()

	// Calculate modal dimensions
	modalWidth := 56

	// Modal style
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	// Center the modal
	modalContent := modal.Render(content)

	// Create overlay
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
