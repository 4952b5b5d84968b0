package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/prefs"
	"github.com/five82/shopdesk/internal/shopapi"
)

var errNoCatalog = errors.New("catalog unavailable")

type searchState struct {
	input    textinput.Model
	typing   bool
	results  *listing.List[shopapi.Product, string]
	selected int
}

// searchLoadedMsg is the result of a load started by a key press. Debounced
// searches report through searchDoneMsg instead.
type searchLoadedMsg struct{ err error }

func newSearchState(catalog Catalog, opts listing.Options) searchState {
	input := textinput.New()
	input.Placeholder = "Tên sản phẩm, thương hiệu..."
	input.Prompt = "/ "
	input.CharLimit = 120

	fetch := func(ctx context.Context, q listing.Query) (shopapi.Page[shopapi.Product], error) {
		if catalog == nil {
			return shopapi.Page[shopapi.Product]{}, errNoCatalog
		}
		return catalog.FilterProducts(ctx, shopapi.ProductFilter{
			Keyword:  q.Keyword,
			Page:     q.Page,
			PageSize: q.PageSize,
			SortBy:   q.SortBy,
		})
	}
	keyOf := func(p shopapi.Product) string { return p.ID }
	return searchState{
		input:   input,
		results: listing.New(fetch, keyOf, opts),
	}
}

func (m Model) searchQuery() listing.Query {
	return listing.Query{
		Keyword:  strings.TrimSpace(m.search.input.Value()),
		Page:     1,
		PageSize: m.pageSize,
		SortBy:   m.prefs.SortBy,
	}
}

// loadSearch reloads the first page of the current keyword and sort.
func (m Model) loadSearch() tea.Cmd {
	results, ctx, q := m.search.results, m.ctx, m.searchQuery()
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return searchLoadedMsg{err: results.Load(actx, q)}
	}
}

func (m Model) loadMoreSearch() tea.Cmd {
	results, ctx := m.search.results, m.ctx
	if st := results.State(); st.Busy() || !st.HasMore() {
		return nil
	}
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		_, err := results.LoadMore(actx)
		return searchLoadedMsg{err: err}
	}
}

// handleSearchInput edits the keyword. Every change schedules a debounced
// search; enter searches at once.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.typing = false
		m.search.input.Blur()
		m.search.results.CancelSearch()
		return m, m.loadSearch()
	case tea.KeyEsc:
		m.search.typing = false
		m.search.input.Blur()
		return m, nil
	}

	before := m.search.input.Value()
	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	if value := m.search.input.Value(); value != before {
		events := m.events
		m.search.results.Search(m.ctx, value, func(err error) {
			select {
			case events <- searchDoneMsg{err: err}:
			default:
			}
		})
	}
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.search.results.Items()
	switch {
	case key.Matches(msg, m.keys.Search):
		m.search.typing = true
		return m, m.search.input.Focus()
	case key.Matches(msg, m.keys.CycleSort):
		m.prefs.SortBy = prefs.NextSort(m.prefs.SortBy)
		m.savePrefs()
		m.search.selected = 0
		m.toasts.Info("Sắp xếp: " + sortLabel(m.prefs.SortBy))
		return m, m.loadSearch()
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.loadMoreSearch()
	case key.Matches(msg, m.keys.ToggleLike):
		if len(items) > 0 {
			m.toggleLike(items[clampIndex(m.search.selected, len(items))])
		}
	case key.Matches(msg, m.keys.Down):
		m.search.selected = clampIndex(m.search.selected+1, len(items))
		// Reaching the end pulls the next page.
		if m.search.selected == len(items)-1 {
			return m, m.loadMoreSearch()
		}
	case key.Matches(msg, m.keys.Up):
		m.search.selected = clampIndex(m.search.selected-1, len(items))
	case key.Matches(msg, m.keys.Top):
		m.search.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.search.selected = clampIndex(len(items)-1, len(items))
	case key.Matches(msg, m.keys.PageDown):
		m.search.selected = clampIndex(m.search.selected+m.contentHeight()/2, len(items))
	case key.Matches(msg, m.keys.PageUp):
		m.search.selected = clampIndex(m.search.selected-m.contentHeight()/2, len(items))
	}
	return m, nil
}

func sortLabel(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "Giá tăng dần"
	case "price_desc":
		return "Giá giảm dần"
	case "name":
		return "Tên A-Z"
	case "bestseller":
		return "Bán chạy"
	default:
		return "Mới nhất"
	}
}

func (m Model) renderSearch() string {
	height := m.contentHeight()
	styles := m.theme.Styles()
	items := m.search.results.Items()
	st := m.search.results.State()

	var b strings.Builder
	b.WriteString(m.search.input.View())
	b.WriteString("\n")

	status := fmt.Sprintf("Đã tìm thấy %d sản phẩm", len(items))
	switch {
	case st.Loading || st.Refreshing:
		status = "Đang tìm..."
	case st.LoadingMore:
		status += " • đang tải thêm"
	case st.HasMore():
		status += fmt.Sprintf(" • trang %d/%d, m để tải thêm", st.Page, st.TotalPages)
	}
	b.WriteString(styles.MutedText.Render(status))
	b.WriteString(styles.FaintText.Render("  sắp xếp: " + sortLabel(m.prefs.SortBy)))
	b.WriteString("\n\n")

	if len(items) == 0 {
		msg := "Không có sản phẩm phù hợp"
		if !st.Loaded {
			msg = "Nhấn / để tìm kiếm"
		}
		if st.Err != nil {
			msg = "Không tải được kết quả. Nhấn R để thử lại."
		}
		b.WriteString(styles.FaintText.Render(msg))
		return m.renderBox("Tìm kiếm", b.String(), m.width, height, true)
	}

	nameWidth := max(m.width-40, 16)
	start, end := visibleWindow(m.search.selected, len(items), height-6)
	for i := start; i < end; i++ {
		b.WriteString(m.productRow(items[i], nameWidth, i == m.search.selected))
		if brand := items[i].Brand; brand != "" && m.width >= LayoutCompactWidth {
			b.WriteString(" " + styles.FaintText.Render(truncate(brand, 16)))
		}
		b.WriteString("\n")
	}
	return m.renderBox("Tìm kiếm", b.String(), m.width, height, true)
}

// visibleWindow returns the [start, end) rows to draw so selected stays in
// view.
func visibleWindow(selected, n, rows int) (int, int) {
	rows = max(rows, 1)
	if n <= rows {
		return 0, n
	}
	start := min(max(selected-rows/2, 0), n-rows)
	return start, start + rows
}
