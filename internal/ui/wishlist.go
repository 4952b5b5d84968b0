package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopdesk/internal/shopapi"
)

type wishState struct {
	selected    int
	reconciling bool
}

func (m Model) wishItems() []shopapi.Product {
	if m.wishlist == nil {
		return nil
	}
	return m.wishlist.Items()
}

// reconcileCmd refetches every liked product so removed ones drop out.
func (m Model) reconcileCmd() tea.Cmd {
	if m.wishlist == nil || m.catalog == nil {
		return nil
	}
	store, catalog, ctx := m.wishlist, m.catalog, m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		_, err := store.Reconcile(actx, catalog.Product)
		return reconcileDoneMsg{err: err}
	}
}

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.wishItems()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.wish.selected = clampIndex(m.wish.selected+1, len(items))
	case key.Matches(msg, m.keys.Up):
		m.wish.selected = clampIndex(m.wish.selected-1, len(items))
	case key.Matches(msg, m.keys.Top):
		m.wish.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.wish.selected = clampIndex(len(items)-1, len(items))
	case key.Matches(msg, m.keys.Remove), key.Matches(msg, m.keys.ToggleLike):
		if len(items) == 0 {
			return m, nil
		}
		p := items[clampIndex(m.wish.selected, len(items))]
		if _, err := m.wishlist.Remove(p.ID); err != nil {
			m.log.WithError(err).WithField("product", p.ID).Warn("wishlist remove failed")
			m.toasts.Error("Không thể lưu danh sách yêu thích")
			return m, nil
		}
		m.toasts.Info("Đã bỏ yêu thích: " + truncate(p.Name, 40))
		m.wish.selected = clampIndex(m.wish.selected, len(items)-1)
	case key.Matches(msg, m.keys.Reconcile):
		if m.wish.reconciling {
			return m, nil
		}
		cmd := m.reconcileCmd()
		if cmd != nil {
			m.wish.reconciling = true
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) renderWishlist() string {
	height := m.contentHeight()
	styles := m.theme.Styles()
	title := "Yêu thích"

	if m.wishlist == nil {
		return m.renderBox(title, styles.FaintText.Render("Danh sách yêu thích không khả dụng"), m.width, height, true)
	}

	items := m.wishItems()
	liked := m.wishlist.Len()

	var b strings.Builder
	summary := fmt.Sprintf("%d sản phẩm yêu thích", liked)
	if m.wish.reconciling {
		summary += " • đang đồng bộ..."
	} else if missing := liked - len(items); missing > 0 {
		summary += fmt.Sprintf(" • %d chưa tải, nhấn r để đồng bộ", missing)
	}
	b.WriteString(styles.MutedText.Render(summary))
	b.WriteString("\n\n")

	if len(items) == 0 {
		b.WriteString(styles.FaintText.Render("Chưa có sản phẩm nào. Nhấn w ở trang chủ hoặc tìm kiếm để thêm."))
		return m.renderBox(title, b.String(), m.width, height, true)
	}

	nameWidth := max(m.width-40, 16)
	start, end := visibleWindow(m.wish.selected, len(items), height-5)
	for i := start; i < end; i++ {
		b.WriteString(m.productRow(items[i], nameWidth, i == m.wish.selected))
		b.WriteString("\n")
	}
	return m.renderBox(title, b.String(), m.width, height, true)
}
