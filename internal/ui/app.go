package ui

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/admin"
	"github.com/five82/shopdesk/internal/auth"
	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/orders"
	"github.com/five82/shopdesk/internal/prefs"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/state"
	"github.com/five82/shopdesk/internal/wishlist"
)

// View represents the current active view.
type View int

const (
	ViewHome View = iota
	ViewSearch
	ViewWishlist
	ViewAdmin
	ViewLogs
)

var viewOrder = []View{ViewHome, ViewSearch, ViewWishlist, ViewAdmin, ViewLogs}

// Title is the command bar label.
func (v View) Title() string {
	switch v {
	case ViewSearch:
		return "Tìm kiếm"
	case ViewWishlist:
		return "Yêu thích"
	case ViewAdmin:
		return "Quản trị"
	case ViewLogs:
		return "Nhật ký"
	default:
		return "Trang chủ"
	}
}

// Catalog is the product lookup the storefront views use.
type Catalog interface {
	FilterProducts(ctx context.Context, f shopapi.ProductFilter) (shopapi.Page[shopapi.Product], error)
	Product(ctx context.Context, id string) (shopapi.Product, error)
}

// Options configures the UI.
type Options struct {
	Context  context.Context
	Catalog  Catalog
	Feed     *state.Store
	Refresh  func(context.Context) error // reloads the home feed now
	Auth     auth.Service
	Wishlist *wishlist.Store
	Admin    *admin.Console
	Orders   *orders.Book
	Toasts   *notify.Toasts
	Logger   logrus.FieldLogger
	LogPath  string

	PollTick       time.Duration
	PageSize       int
	SearchDebounce time.Duration
	Prefs          prefs.Prefs
	PrefsPath      string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	catalog   Catalog
	feed      *state.Store
	refresh   func(context.Context) error
	auth      auth.Service
	wishlist  *wishlist.Store
	admin     *admin.Console
	orderBook *orders.Book
	toasts    *notify.Toasts
	log       logrus.FieldLogger
	logPath   string
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	pageSize  int

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	home     homeState
	search   searchState
	wish     wishState
	console  adminState
	logState logState

	// Overlays
	showHelp bool
	modal    Modal

	// events delivers results produced outside a tea.Cmd, such as
	// debounced searches.
	events   chan tea.Msg
	boundary *boundary
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	logger := opts.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		logger = silent
	}

	toasts := opts.Toasts
	if toasts == nil {
		toasts = notify.NewToasts()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs = prefs.Defaults()
	}
	pageSize := userPrefs.PageSizeOr(opts.PageSize)

	m := Model{
		ctx:         ctx,
		catalog:     opts.Catalog,
		feed:        opts.Feed,
		refresh:     opts.Refresh,
		auth:        opts.Auth,
		wishlist:    opts.Wishlist,
		admin:       opts.Admin,
		orderBook:   opts.Orders,
		toasts:      toasts,
		log:         logger.WithField("component", "ui"),
		logPath:     opts.LogPath,
		prefs:       userPrefs,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		pageSize:    pageSize,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(userPrefs.Theme),
		currentView: ViewHome,
		events:      make(chan tea.Msg, 16),
		boundary:    &boundary{},
	}
	listOpts := listing.Options{Notifier: toasts, Logger: m.log, SearchDebounce: opts.SearchDebounce}
	m.search = newSearchState(opts.Catalog, listOpts)
	m.console = newAdminState(opts.Orders, listOpts)
	m.logState = newLogState()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		waitForEvent(m.events),
	}
	// Fetch snapshot immediately on start
	if m.feed != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.feed))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model. A panic while handling msg is recovered
// into the error screen.
func (m Model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.boundary.record(r, debug.Stack(), m.log)
			next, cmd = m, nil
		}
	}()
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.home.selected = clampIndex(m.home.selected, len(m.homeProducts()))
		return m, nil

	case searchDoneMsg:
		m.search.selected = clampIndex(m.search.selected, m.search.results.Len())
		return m, waitForEvent(m.events)

	case searchLoadedMsg:
		m.search.selected = clampIndex(m.search.selected, m.search.results.Len())
		return m, nil

	case listLoadedMsg:
		return m.handleListLoaded(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case reconcileDoneMsg:
		m.wish.reconciling = false
		if msg.err != nil {
			m.toasts.Error(notify.Friendly(msg.err))
		} else {
			m.toasts.Info("Đã đồng bộ danh sách yêu thích")
		}
		m.wish.selected = clampIndex(m.wish.selected, len(m.wishItems()))
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	// Blink and other input messages go to the focused text input.
	if m.modal != nil {
		modal, cmd, _ := m.modal.Update(msg, m.keys)
		m.modal = modal
		return m, cmd
	}
	if m.currentView == ViewSearch && m.search.typing {
		var cmd tea.Cmd
		m.search.input, cmd = m.search.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.boundary.record(r, debug.Stack(), m.log)
			out = m.renderCrash()
		}
	}()

	if m.boundary.crashed() {
		return m.renderCrash()
	}
	if !m.ready {
		return "Đang tải..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.boundary.crashed() {
		return m.handleCrashKey(msg)
	}

	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Focused text inputs own the keyboard.
	if m.currentView == ViewSearch && m.search.typing {
		return m.handleSearchInput(msg)
	}
	if m.currentView == ViewLogs && m.logState.searching {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.relativeView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.relativeView(-1))

	case key.Matches(msg, m.keys.ViewHome):
		return m.switchView(ViewHome)
	case key.Matches(msg, m.keys.ViewSearch):
		return m.switchView(ViewSearch)
	case key.Matches(msg, m.keys.ViewWishlist):
		return m.switchView(ViewWishlist)
	case key.Matches(msg, m.keys.ViewAdmin):
		return m.switchView(ViewAdmin)
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewAdmin && m.clearAdminSelection() {
			return m, nil
		}
		if m.currentView == ViewLogs && m.logState.query != "" {
			m.clearLogQuery()
			return m, nil
		}
		m.currentView = ViewHome
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadView()

	case key.Matches(msg, m.keys.Login):
		return m.toggleLogin()
	}

	// View-specific keys
	switch m.currentView {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewWishlist:
		return m.handleWishlistKey(msg)
	case ViewAdmin:
		return m.handleAdminKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

// relativeView returns the view delta steps away in tab order.
func (m Model) relativeView(delta int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			n := len(viewOrder)
			return viewOrder[((i+delta)%n+n)%n]
		}
	}
	return ViewHome
}

// switchView shows v and loads whatever it has not loaded yet.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	switch v {
	case ViewSearch:
		if !m.search.results.State().Loaded && !m.search.results.State().Busy() {
			return m, m.loadSearch()
		}
	case ViewAdmin:
		if m.isAdmin() && !m.console.loaded[m.console.tab] {
			m.console.loaded[m.console.tab] = true
			return m, m.loadAdminTab(m.console.tab)
		}
	case ViewLogs:
		return m, m.refreshLogs()
	}
	return m, nil
}

// reloadView refetches the current view's data.
func (m Model) reloadView() tea.Cmd {
	switch m.currentView {
	case ViewHome:
		return m.refreshFeedCmd()
	case ViewSearch:
		return m.loadSearch()
	case ViewWishlist:
		return m.reconcileCmd()
	case ViewAdmin:
		if m.isAdmin() {
			return m.loadAdminTab(m.console.tab)
		}
	case ViewLogs:
		return m.refreshLogs()
	}
	return nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Fetch latest snapshot
	if m.feed != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.feed))
	}

	// Refresh logs if in log view and following
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

func (m Model) refreshFeedCmd() tea.Cmd {
	if m.refresh == nil || m.feed == nil {
		return nil
	}
	refresh, store, ctx := m.refresh, m.feed, m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		_ = refresh(actx)
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.WithError(err).Warn("save preferences failed")
	}
}

func (m Model) isAdmin() bool {
	return m.auth.Session != nil && m.auth.Session.IsAdmin() && m.admin != nil
}

// handleActionDone reports the outcome of a write. Failures of optimistic
// writes were already reported by the mutation; only the log is written.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("action", msg.action).Warn("action failed")
		if !msg.reported {
			m.toasts.Error(notify.Friendly(msg.err))
		}
	} else if msg.success != "" {
		m.toasts.Info(msg.success)
	}
	m.clampAdminSelection()
	if msg.followUp != nil {
		return m, msg.followUp
	}
	return m, nil
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderToasts())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHome:
		return m.renderHome()
	case ViewSearch:
		return m.renderSearch()
	case ViewWishlist:
		return m.renderWishlist()
	case ViewAdmin:
		return m.renderAdmin()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// searchDoneMsg arrives through the events channel when a debounced search
// finishes.
type searchDoneMsg struct{ err error }

// actionDoneMsg is the result of a write triggered from a view.
type actionDoneMsg struct {
	action   string
	success  string // toast on success; empty for none
	err      error
	reported bool // err was already shown by the mutation
	followUp tea.Cmd
}

type listLoadedMsg struct {
	tab adminTab
	err error
}

type loginDoneMsg struct {
	user shopapi.User
	err  error
}

type reconcileDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// actionCmd runs fn with a bounded context and reports through
// actionDoneMsg.
func (m Model) actionCmd(action, success string, reported bool, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		err := fn(actx)
		return actionDoneMsg{action: action, success: success, err: err, reported: reported && err != nil}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
