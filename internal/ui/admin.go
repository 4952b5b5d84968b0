package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopdesk/internal/admin"
	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/orders"
	"github.com/five82/shopdesk/internal/shopapi"
)

// adminTab is a section of the admin view.
type adminTab int

const (
	tabUsers adminTab = iota
	tabSettings
	tabComments
	tabProducts
	tabOrders
	tabCount
)

func (t adminTab) Title() string {
	switch t {
	case tabSettings:
		return "Giao diện"
	case tabComments:
		return "Bình luận"
	case tabProducts:
		return "Sản phẩm"
	case tabOrders:
		return "Đơn hàng"
	default:
		return "Người dùng"
	}
}

var errNoOrders = errors.New("order book unavailable")

// lowStockThreshold marks products worth restocking.
const lowStockThreshold = 5

var productSorts = []admin.ProductSort{
	{Field: admin.SortByName},
	{Field: admin.SortByName, Desc: true},
	{Field: admin.SortByPrice},
	{Field: admin.SortByPrice, Desc: true},
	{Field: admin.SortByStock},
	{Field: admin.SortByStock, Desc: true},
}

var orderSorts = []string{orders.SortNewest, orders.SortOldest, orders.SortTotal, orders.SortTotalLo}

type adminState struct {
	tab      adminTab
	selected [tabCount]int
	loaded   [tabCount]bool

	orders      *listing.List[orders.Order, string]
	orderFilter int // 0 is every status, then orders.Statuses
	orderSort   int
	productSort int
}

func newAdminState(book *orders.Book, opts listing.Options) adminState {
	fetch := func(ctx context.Context, q listing.Query) (shopapi.Page[orders.Order], error) {
		if book == nil {
			return shopapi.Page[orders.Order]{}, errNoOrders
		}
		return book.Fetch(ctx, q)
	}
	return adminState{
		orders: listing.New(fetch, func(o orders.Order) string { return o.ID }, opts),
	}
}

func (s adminState) statusFilter() orders.Status {
	if s.orderFilter <= 0 || s.orderFilter > len(orders.Statuses) {
		return ""
	}
	return orders.Statuses[s.orderFilter-1]
}

// loadAdminTab fetches the first page of tab.
func (m Model) loadAdminTab(tab adminTab) tea.Cmd {
	if m.admin == nil && tab != tabOrders {
		return nil
	}
	console, list, ctx := m.admin, m.console.orders, m.ctx
	q := listing.Query{Page: 1, PageSize: m.pageSize}
	if tab == tabProducts {
		q.SortBy = m.prefs.SortBy
	}
	if tab == tabOrders {
		q.SortBy = orderSorts[m.console.orderSort%len(orderSorts)]
		if status := m.console.statusFilter(); status != "" {
			q.Filters = map[string]string{orders.FilterStatus: string(status)}
		}
	}
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		var err error
		switch tab {
		case tabUsers:
			err = console.Users.Load(actx, q)
		case tabSettings:
			err = console.Settings.Load(actx, q)
		case tabComments:
			err = console.Comments.Load(actx, q)
		case tabProducts:
			err = console.Products.Load(actx, q)
		case tabOrders:
			err = list.Load(actx, q)
		}
		return listLoadedMsg{tab: tab, err: err}
	}
}

// loadMoreAdminTab appends the next page of a paginated tab.
func (m Model) loadMoreAdminTab(tab adminTab) tea.Cmd {
	if m.admin == nil && tab != tabOrders {
		return nil
	}
	console, list, ctx := m.admin, m.console.orders, m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		var err error
		switch tab {
		case tabUsers:
			_, err = console.Users.LoadMore(actx)
		case tabComments:
			_, err = console.Comments.LoadMore(actx)
		case tabProducts:
			_, err = console.Products.LoadMore(actx)
		case tabOrders:
			_, err = list.LoadMore(actx)
		}
		return listLoadedMsg{tab: tab, err: err}
	}
}

// handleListLoaded clamps the cursor and raises the logo prompt when more
// than one logo is active.
func (m Model) handleListLoaded(msg listLoadedMsg) (tea.Model, tea.Cmd) {
	m.clampAdminSelection()
	if msg.err != nil || msg.tab != tabSettings || m.admin == nil || m.modal != nil {
		return m, nil
	}
	if conflicts := m.admin.LogoConflicts(); len(conflicts) > 1 {
		m.modal = m.newLogoModal(conflicts)
	}
	return m, nil
}

// settingsChecked reruns the logo conflict check on settings a mutation has
// already reloaded.
func settingsChecked() tea.Msg { return listLoadedMsg{tab: tabSettings} }

func (m Model) adminLen(tab adminTab) int {
	if tab == tabOrders {
		return m.console.orders.Len()
	}
	if m.admin == nil {
		return 0
	}
	switch tab {
	case tabUsers:
		return m.admin.Users.Len()
	case tabSettings:
		return m.admin.Settings.Len()
	case tabComments:
		return m.admin.Comments.Len()
	case tabProducts:
		return m.admin.Products.Len()
	}
	return 0
}

func (m *Model) clampAdminSelection() {
	for t := adminTab(0); t < tabCount; t++ {
		m.console.selected[t] = clampIndex(m.console.selected[t], m.adminLen(t))
	}
}

func (m Model) sortedProducts() []shopapi.Product {
	return m.admin.SortedProducts(productSorts[m.console.productSort%len(productSorts)])
}

func (m Model) cursor() int {
	return m.console.selected[m.console.tab]
}

func (m Model) selectedUser() (shopapi.User, bool) {
	items := m.admin.Users.Items()
	if len(items) == 0 {
		return shopapi.User{}, false
	}
	return items[clampIndex(m.cursor(), len(items))], true
}

func (m Model) selectedSetting() (shopapi.Setting, bool) {
	items := m.admin.Settings.Items()
	if len(items) == 0 {
		return shopapi.Setting{}, false
	}
	return items[clampIndex(m.cursor(), len(items))], true
}

func (m Model) selectedComment() (shopapi.Comment, bool) {
	items := m.admin.Comments.Items()
	if len(items) == 0 {
		return shopapi.Comment{}, false
	}
	return items[clampIndex(m.cursor(), len(items))], true
}

func (m Model) selectedProduct() (shopapi.Product, bool) {
	items := m.sortedProducts()
	if len(items) == 0 {
		return shopapi.Product{}, false
	}
	return items[clampIndex(m.cursor(), len(items))], true
}

func (m Model) selectedOrder() (orders.Order, bool) {
	items := m.console.orders.Items()
	if len(items) == 0 {
		return orders.Order{}, false
	}
	return items[clampIndex(m.cursor(), len(items))], true
}

// actionThen is actionCmd with a command to run after the action reports.
func (m Model) actionThen(action, success string, reported bool, fn func(context.Context) error, followUp tea.Cmd) tea.Cmd {
	run := m.actionCmd(action, success, reported, fn)
	return func() tea.Msg {
		msg := run().(actionDoneMsg)
		msg.followUp = followUp
		return msg
	}
}

func (m Model) switchAdminTab(tab adminTab) (tea.Model, tea.Cmd) {
	m.console.tab = tab
	if !m.console.loaded[tab] {
		m.console.loaded[tab] = true
		return m, m.loadAdminTab(tab)
	}
	return m, nil
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.isAdmin() {
		return m, nil
	}
	tab := m.console.tab
	n := m.adminLen(tab)

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchAdminTab((tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchAdminTab((tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.Down):
		m.console.selected[tab] = clampIndex(m.cursor()+1, n)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.console.selected[tab] = clampIndex(m.cursor()-1, n)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.console.selected[tab] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.console.selected[tab] = clampIndex(n-1, n)
		return m, nil
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.loadMoreAdminTab(tab)
	}

	switch tab {
	case tabUsers:
		return m.handleUsersKey(msg)
	case tabSettings:
		return m.handleSettingsKey(msg)
	case tabComments:
		return m.handleCommentsKey(msg)
	case tabProducts:
		return m.handleProductsKey(msg)
	case tabOrders:
		return m.handleOrdersKey(msg)
	}
	return m, nil
}

func (m Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	u, ok := m.selectedUser()
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if !ok {
			return m, nil
		}
		staged, err := m.admin.StageBanToggle(u.ID)
		if err != nil {
			m.toasts.Error(err.Error())
			return m, nil
		}
		success := "Đã mở khóa " + u.Username
		if staged.Next().Status == shopapi.UserBanned {
			success = "Đã khóa " + u.Username
		}
		return m, m.actionCmd("toggle ban", success, true, staged.Commit)

	case key.Matches(msg, m.keys.Select):
		if ok {
			m.admin.UserSelection.Toggle(u.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ApplyBulk):
		if !m.admin.UserSelection.Active() {
			m.toasts.Info("Chưa chọn người dùng nào")
			return m, nil
		}
		ids := m.admin.UserSelection.Submit()
		console := m.admin
		if m.allBanned(ids) {
			return m, m.actionCmd("unban users", fmt.Sprintf("Đã mở khóa %d người dùng", len(ids)), true,
				func(ctx context.Context) error { return console.UnbanUsers(ctx, ids) })
		}
		return m, m.actionCmd("ban users", fmt.Sprintf("Đã khóa %d người dùng", len(ids)), true,
			func(ctx context.Context) error { return console.BanUsers(ctx, ids) })
	}
	return m, nil
}

// clearAdminSelection drops the current tab's selection and reports whether
// there was one.
func (m Model) clearAdminSelection() bool {
	if m.admin == nil {
		return false
	}
	switch m.console.tab {
	case tabUsers:
		if m.admin.UserSelection.Active() {
			m.admin.UserSelection.Clear()
			return true
		}
	case tabSettings:
		if m.admin.SettingSelection.Active() {
			m.admin.SettingSelection.Clear()
			return true
		}
	case tabProducts:
		if m.admin.ProductSelection.Active() {
			m.admin.ProductSelection.Clear()
			return true
		}
	}
	return false
}

func (m Model) allBanned(ids []string) bool {
	for _, id := range ids {
		u, ok := m.admin.Users.Get(id)
		if !ok || u.Status != shopapi.UserBanned {
			return false
		}
	}
	return len(ids) > 0
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s, ok := m.selectedSetting()
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if !ok {
			return m, nil
		}
		staged, err := m.admin.StageSettingToggle(s.ID)
		if err != nil {
			m.toasts.Error(err.Error())
			return m, nil
		}
		success := "Đã ẩn " + s.Name
		if staged.Next().Active() {
			success = "Đã hiện " + s.Name
		}
		// Showing a logo can leave two active. Commit already reloads the
		// settings, so the follow-up only runs the conflict check.
		var followUp tea.Cmd
		if s.Type == shopapi.SettingLogo && staged.Next().Active() {
			followUp = settingsChecked
		}
		return m, m.actionThen("toggle setting", success, true, staged.Commit, followUp)

	case key.Matches(msg, m.keys.Select):
		if ok {
			m.admin.SettingSelection.Toggle(s.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ApplyBulk):
		if !m.admin.SettingSelection.Active() {
			m.toasts.Info("Chưa chọn mục giao diện nào")
			return m, nil
		}
		ids := m.admin.SettingSelection.Submit()
		console := m.admin
		return m, m.actionCmd("hide settings", fmt.Sprintf("Đã ẩn %d mục", len(ids)), true,
			func(ctx context.Context) error { return console.HideSettings(ctx, ids) })

	case key.Matches(msg, m.keys.Conflicts):
		conflicts := m.admin.LogoConflicts()
		if len(conflicts) < 2 {
			m.toasts.Info("Không có xung đột logo")
			return m, nil
		}
		m.modal = m.newLogoModal(conflicts)
	}
	return m, nil
}

func (m Model) handleCommentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Toggle) {
		return m, nil
	}
	c, ok := m.selectedComment()
	if !ok {
		return m, nil
	}
	staged, err := m.admin.StageCommentToggle(c.ID)
	if err != nil {
		m.toasts.Error(err.Error())
		return m, nil
	}
	success := "Đã ẩn bình luận"
	if staged.Next().Visible {
		success = "Đã hiện bình luận"
	}
	return m, m.actionCmd("toggle comment", success, true, staged.Commit)
}

func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, ok := m.selectedProduct()
	console := m.admin
	switch {
	case key.Matches(msg, m.keys.CycleSort):
		m.console.productSort = (m.console.productSort + 1) % len(productSorts)
		m.console.selected[tabProducts] = 0

	case key.Matches(msg, m.keys.Select):
		if ok {
			m.admin.ProductSelection.Toggle(p.ID)
		}

	case key.Matches(msg, m.keys.Remove):
		if !ok {
			return m, nil
		}
		id := p.ID
		m.modal = newConfirmModal("Xóa sản phẩm", fmt.Sprintf("Xóa %q? Thao tác không thể hoàn tác.", p.Name), func() tea.Cmd {
			return m.actionCmd("delete product", "Đã xóa "+truncate(p.Name, 40), true,
				func(ctx context.Context) error { return console.DeleteProducts(ctx, []string{id}, false) })
		})

	case key.Matches(msg, m.keys.ApplyBulk):
		count := m.admin.ProductSelection.Len()
		if count == 0 {
			m.toasts.Info("Chưa chọn sản phẩm nào")
			return m, nil
		}
		m.modal = newConfirmModal("Xóa sản phẩm", fmt.Sprintf("Xóa %d sản phẩm đã chọn?", count), func() tea.Cmd {
			ids := console.ProductSelection.Submit()
			return m.actionCmd("delete products", fmt.Sprintf("Đã xóa %d sản phẩm", len(ids)), true,
				func(ctx context.Context) error { return console.DeleteProducts(ctx, ids, false) })
		})
	}
	return m, nil
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.orderBook == nil {
		return m, nil
	}
	o, ok := m.selectedOrder()
	book := m.orderBook
	switch {
	case key.Matches(msg, m.keys.Advance):
		if !ok {
			return m, nil
		}
		next, err := book.Advance(o.ID)
		if err != nil {
			m.toasts.Error(orderError(err))
			return m, nil
		}
		m.toasts.Info(fmt.Sprintf("Đơn %s: %s", next.ID, next.Status.Label()))
		return m.reloadOrders()

	case key.Matches(msg, m.keys.CancelOrder):
		if !ok {
			return m, nil
		}
		if !o.Status.CanTransition(orders.Cancelled) {
			m.toasts.Error(fmt.Sprintf("Không thể hủy đơn %s (%s)", o.ID, o.Status.Label()))
			return m, nil
		}
		id := o.ID
		m.modal = newConfirmModal("Hủy đơn hàng", fmt.Sprintf("Hủy đơn %s của %s?", o.ID, o.Customer), func() tea.Cmd {
			return m.actionThen("cancel order", "Đã hủy đơn "+id, false, func(context.Context) error {
				_, err := book.Cancel(id)
				return err
			}, m.loadAdminTab(tabOrders))
		})

	case key.Matches(msg, m.keys.CycleFilter):
		m.console.orderFilter = (m.console.orderFilter + 1) % (len(orders.Statuses) + 1)
		m.console.selected[tabOrders] = 0
		return m.reloadOrders()

	case key.Matches(msg, m.keys.CycleSort):
		m.console.orderSort = (m.console.orderSort + 1) % len(orderSorts)
		return m.reloadOrders()
	}
	return m, nil
}

func (m Model) reloadOrders() (tea.Model, tea.Cmd) {
	return m, m.loadAdminTab(tabOrders)
}

func orderError(err error) string {
	var te *orders.TransitionError
	if errors.As(err, &te) {
		if te.From.Final() {
			return fmt.Sprintf("Đơn %s đã %s", te.ID, strings.ToLower(te.From.Label()))
		}
		return fmt.Sprintf("Đơn %s không thể chuyển sang %s", te.ID, te.To.Label())
	}
	return err.Error()
}

func orderSortLabel(sortBy string) string {
	switch sortBy {
	case orders.SortOldest:
		return "cũ nhất"
	case orders.SortTotal:
		return "tổng giảm dần"
	case orders.SortTotalLo:
		return "tổng tăng dần"
	default:
		return "mới nhất"
	}
}

func productSortLabel(s admin.ProductSort) string {
	label := map[admin.ProductSortField]string{
		admin.SortByName:  "tên",
		admin.SortByPrice: "giá",
		admin.SortByStock: "tồn kho",
	}[s.Field]
	return label + ternary(s.Desc, " ↓", " ↑")
}

// Rendering

func (m Model) renderAdmin() string {
	height := m.contentHeight()
	styles := m.theme.Styles()

	if !m.isAdmin() {
		msg := "Cần đăng nhập bằng tài khoản quản trị. Nhấn L để đăng nhập."
		return m.renderBox("Quản trị", styles.WarningText.Render(msg), m.width, height, true)
	}

	var b strings.Builder
	for t := adminTab(0); t < tabCount; t++ {
		label := " " + t.Title() + " "
		if t == m.console.tab {
			b.WriteString(styles.Selected.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
	}
	b.WriteString("\n")

	rows := height - 5
	var body string
	switch m.console.tab {
	case tabUsers:
		body = m.renderUsers(rows)
	case tabSettings:
		body = m.renderSettings(rows)
	case tabComments:
		body = m.renderComments(rows)
	case tabProducts:
		body = m.renderProducts(rows)
	case tabOrders:
		body = m.renderOrders(rows)
	}
	b.WriteString(body)
	return m.renderBox("Quản trị", b.String(), m.width, height, true)
}

// listStatus is the line above a tab's rows.
func (m Model) listStatus(st listing.State, count int, noun string, picked int) string {
	styles := m.theme.Styles()
	switch {
	case st.Loading || st.Refreshing:
		return styles.MutedText.Render("Đang tải...")
	case st.Err != nil && count == 0:
		return styles.DangerText.Render("Không tải được dữ liệu. Nhấn R để thử lại.")
	}
	line := fmt.Sprintf("%d %s", count, noun)
	if st.HasMore() {
		line += fmt.Sprintf(" • trang %d/%d, m để tải thêm", st.Page, st.TotalPages)
	}
	out := styles.MutedText.Render(line)
	if picked > 0 {
		out += "  " + styles.AccentText.Render(fmt.Sprintf("đã chọn %d • X áp dụng • esc bỏ chọn", picked))
	}
	return out
}

func (m Model) pickMarker(picked bool) string {
	return ternary(picked, "◉", "○")
}

func (m Model) renderRow(line string, selected bool) string {
	styles := m.theme.Styles()
	if selected {
		return styles.Selected.Render(line)
	}
	return styles.Text.Render(line)
}

func (m Model) renderUsers(rows int) string {
	styles := m.theme.Styles()
	users := m.admin.Users.Items()
	var b strings.Builder
	b.WriteString(m.listStatus(m.admin.Users.State(), len(users), "người dùng", m.admin.UserSelection.Len()))
	b.WriteString("\n")
	start, end := visibleWindow(m.cursor(), len(users), rows)
	for i := start; i < end; i++ {
		u := users[i]
		line := fmt.Sprintf("%s %-20s %-24s %s", m.pickMarker(m.admin.UserSelection.Has(u.ID)),
			truncate(u.Username, 20), truncate(u.Name, 24), truncate(u.Email, 30))
		b.WriteString(m.renderRow(line, i == m.cursor()))
		status := string(u.Status)
		if status == "" {
			status = string(shopapi.UserActive)
		}
		b.WriteString(" " + styles.StatusStyle(status).Render(ternary(u.Status == shopapi.UserBanned, "ĐÃ KHÓA", "HOẠT ĐỘNG")))
		if u.IsAdmin {
			b.WriteString(" " + styles.StatusStyle("admin").Render("ADMIN"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSettings(rows int) string {
	styles := m.theme.Styles()
	settings := m.admin.Settings.Items()
	var b strings.Builder
	b.WriteString(m.listStatus(m.admin.Settings.State(), len(settings), "mục giao diện", m.admin.SettingSelection.Len()))
	if len(m.admin.LogoConflicts()) > 1 {
		b.WriteString("  " + styles.WarningText.Render("nhiều logo đang bật • c để chọn"))
	}
	b.WriteString("\n")
	start, end := visibleWindow(m.cursor(), len(settings), rows)
	for i := start; i < end; i++ {
		s := settings[i]
		line := fmt.Sprintf("%s %-7s %-30s %2d ảnh", m.pickMarker(m.admin.SettingSelection.Has(s.ID)),
			shopapi.SettingTypeLabel(s.Type), truncate(s.Name, 30), len(s.Medias))
		b.WriteString(m.renderRow(line, i == m.cursor()))
		if s.Active() {
			b.WriteString(" " + styles.StatusStyle("active").Render("HIỆN"))
		} else {
			b.WriteString(" " + styles.StatusStyle("hidden").Render("ẨN"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderComments(rows int) string {
	styles := m.theme.Styles()
	comments := m.admin.Comments.Items()
	var b strings.Builder
	b.WriteString(m.listStatus(m.admin.Comments.State(), len(comments), "bình luận", 0))
	b.WriteString("\n")
	start, end := visibleWindow(m.cursor(), len(comments), rows)
	for i := start; i < end; i++ {
		c := comments[i]
		stars := strings.Repeat("★", min(max(c.Rating, 0), 5)) + strings.Repeat("☆", 5-min(max(c.Rating, 0), 5))
		line := fmt.Sprintf("%s %-18s %s", stars, truncate(c.AuthorName, 18), truncate(c.Title+" "+c.Body, max(m.width-50, 20)))
		b.WriteString(m.renderRow(line, i == m.cursor()))
		if c.Visible {
			b.WriteString(" " + styles.StatusStyle("active").Render("HIỆN"))
		} else {
			b.WriteString(" " + styles.StatusStyle("hidden").Render("ẨN"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderProducts(rows int) string {
	styles := m.theme.Styles()
	products := m.sortedProducts()
	sort := productSorts[m.console.productSort%len(productSorts)]
	low := 0
	isLow := admin.LowStock(lowStockThreshold)
	for _, p := range products {
		if isLow(p) {
			low++
		}
	}

	var b strings.Builder
	b.WriteString(m.listStatus(m.admin.Products.State(), len(products), "sản phẩm", m.admin.ProductSelection.Len()))
	b.WriteString(styles.FaintText.Render("  sắp xếp: " + productSortLabel(sort)))
	if low > 0 {
		b.WriteString("  " + styles.WarningText.Render(fmt.Sprintf("%d sắp hết hàng", low)))
	}
	b.WriteString("\n")
	start, end := visibleWindow(m.cursor(), len(products), rows)
	for i := start; i < end; i++ {
		p := products[i]
		line := fmt.Sprintf("%s %-32s %14s  kho %3d", m.pickMarker(m.admin.ProductSelection.Has(p.ID)),
			truncate(p.Name, 32), formatVND(p.EffectivePrice()), p.Stock)
		b.WriteString(m.renderRow(line, i == m.cursor()))
		if isLow(p) {
			b.WriteString(" " + styles.WarningText.Render("!"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderOrders(rows int) string {
	styles := m.theme.Styles()
	if m.orderBook == nil {
		return styles.FaintText.Render("Không có dữ liệu đơn hàng")
	}
	items := m.console.orders.Items()

	var b strings.Builder
	counts := m.orderBook.CountByStatus()
	var tally []string
	for _, s := range orders.Statuses {
		tally = append(tally, fmt.Sprintf("%s %d", s.Label(), counts[s]))
	}
	b.WriteString(styles.MutedText.Render(strings.Join(tally, " • ")))
	b.WriteString("  " + styles.SuccessText.Render("doanh thu "+formatVND(m.orderBook.Revenue())))
	b.WriteString("\n")

	filter := "tất cả"
	if s := m.console.statusFilter(); s != "" {
		filter = s.Label()
	}
	b.WriteString(m.listStatus(m.console.orders.State(), len(items), "đơn hàng", 0))
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  lọc: %s • sắp xếp: %s", filter,
		orderSortLabel(orderSorts[m.console.orderSort%len(orderSorts)]))))
	b.WriteString("\n")

	start, end := visibleWindow(m.cursor(), len(items), rows-1)
	for i := start; i < end; i++ {
		o := items[i]
		line := fmt.Sprintf("%-8s %-20s %3d sp %14s  %s", o.ID, truncate(o.Customer, 20), o.Quantity(),
			formatVND(o.Total), o.PlacedAt.Format("02/01 15:04"))
		b.WriteString(m.renderRow(line, i == m.cursor()))
		b.WriteString(" " + styles.StatusStyle(string(o.Status)).Render(o.Status.Label()))
		b.WriteString("\n")
	}
	return b.String()
}
