package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Login      key.Binding

	// View switching
	ViewHome     key.Binding
	ViewSearch   key.Binding
	ViewWishlist key.Binding
	ViewAdmin    key.Binding
	ViewLogs     key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding

	// Catalog actions
	Search     key.Binding
	CycleSort  key.Binding
	LoadMore   key.Binding
	ToggleLike key.Binding
	Remove     key.Binding
	Reconcile  key.Binding

	// Admin actions
	Toggle       key.Binding
	Select       key.Binding
	ApplyBulk    key.Binding
	Conflicts    key.Binding
	Advance      key.Binding
	CancelOrder  key.Binding
	CycleFilter  key.Binding
	ToggleFollow key.Binding

	// Modal/input
	Confirm key.Binding
	Retry   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Thoát"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Trợ giúp"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Đổi giao diện màu"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Màn hình kế tiếp"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Màn hình trước"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Về trang chủ"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Tải lại"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Đăng nhập/đăng xuất"),
		),

		// View switching
		ViewHome: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Trang chủ"),
		),
		ViewSearch: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Tìm kiếm"),
		),
		ViewWishlist: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Yêu thích"),
		),
		ViewAdmin: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Quản trị"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Nhật ký"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Lên"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Xuống"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Đầu danh sách"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Cuối danh sách"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Lên nửa trang"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Xuống nửa trang"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Tab trước"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Tab sau"),
		),

		// Catalog actions
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Nhập từ khóa"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Đổi cách sắp xếp"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Tải thêm"),
		),
		ToggleLike: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Thêm/bỏ yêu thích"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Xóa khỏi danh sách"),
		),
		Reconcile: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Đồng bộ yêu thích"),
		),

		// Admin actions
		Toggle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Khóa/ẩn/hiện mục đang chọn"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Chọn nhiều"),
		),
		ApplyBulk: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Áp dụng cho các mục đã chọn"),
		),
		Conflicts: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Xử lý trùng logo"),
		),
		Advance: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Chuyển trạng thái đơn"),
		),
		CancelOrder: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Hủy đơn"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Đổi bộ lọc"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Bật/tắt theo dõi"),
		),

		// Modal/input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Xác nhận"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Thử lại"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewHome, k.ViewSearch, k.ViewWishlist, k.ViewAdmin, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Search, k.CycleSort, k.LoadMore, k.ToggleLike, k.Remove, k.Reconcile},
		{k.PrevTab, k.NextTab, k.Toggle, k.Select, k.ApplyBulk, k.Conflicts},
		{k.Advance, k.CancelOrder, k.CycleFilter},
		{k.Refresh, k.Login, k.CycleTheme, k.Help, k.Quit},
	}
}
