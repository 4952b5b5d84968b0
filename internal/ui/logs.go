package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/logtail"
)

// logLevels is the order f cycles the minimum level through.
var logLevels = []logrus.Level{logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}

// logState holds all log-related state.
type logState struct {
	entries  []logtail.Entry
	err      error
	viewport viewport.Model
	follow   bool
	minLevel logrus.Level
	query    string

	searchInput textinput.Model
	searching   bool

	// dirty marks the viewport content as stale.
	dirty bool
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func newLogState() logState {
	ti := textinput.New()
	ti.Placeholder = "Lọc nhật ký..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	return logState{
		follow:      true,
		minLevel:    logrus.DebugLevel,
		searchInput: ti,
		dirty:       true,
	}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logState.viewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-3, 1))
	m.logState.viewport.Style = lipgloss.NewStyle()
	m.logState.dirty = true
}

// updateLogViewport resizes the viewport and re-renders stale content.
func (m *Model) updateLogViewport() {
	if m.logState.viewport.Width == 0 {
		m.initLogViewport()
	}
	// Box inner height minus the status line below the box.
	m.logState.viewport.Width = max(m.width-4, 1)
	m.logState.viewport.Height = max(m.contentHeight()-3, 1)

	if m.logState.dirty {
		m.logState.viewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logState.viewport.GotoBottom()
	}
}

// refreshLogs reads the tail of the log file.
func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.logState.err = msg.err
		m.logState.dirty = true
		m.updateLogViewport()
		return
	}
	unchanged := m.logState.err == nil && slices.EqualFunc(m.logState.entries, msg.entries, func(a, b logtail.Entry) bool {
		return a.Raw == b.Raw
	})
	if unchanged {
		return
	}
	m.logState.err = nil
	m.logState.entries = msg.entries
	m.logState.dirty = true
	m.updateLogViewport()
}

func (m Model) visibleLogEntries() []logtail.Entry {
	return logtail.Filter(m.logState.entries, m.logState.minLevel, m.logState.query)
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := "Nhật ký"
	if m.logState.query != "" || m.logState.minLevel != logrus.DebugLevel {
		title = "Nhật ký (đã lọc)"
	}
	box := m.renderBox(title, m.logState.viewport.View(), m.width, m.contentHeight()-1, true)
	return box + "\n" + m.renderLogStatus(styles)
}

func (m Model) renderLogStatus(styles Styles) string {
	if m.logState.searching {
		return m.logState.searchInput.View()
	}
	if m.logState.err != nil {
		return styles.DangerText.Render("Không đọc được nhật ký: " + truncate(m.logState.err.Error(), 80))
	}
	shown := len(m.visibleLogEntries())
	parts := []string{
		fmt.Sprintf("%d/%d dòng", shown, len(m.logState.entries)),
		"mức ≥ " + strings.ToUpper(m.logState.minLevel.String()),
		"theo dõi " + ternary(m.logState.follow, "bật", "tắt"),
	}
	if m.logState.query != "" {
		parts = append(parts, "lọc: "+m.logState.query+" (esc để xóa)")
	}
	if m.logPath != "" {
		parts = append(parts, truncate(m.logPath, 40))
	}
	return styles.FaintText.Render(strings.Join(parts, " • "))
}

// renderLogContent renders the filtered, colorized log lines.
func (m *Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Nhật ký chỉ ghi ra màn hình; đặt log_file trong cấu hình để xem tại đây.")
	}
	entries := m.visibleLogEntries()
	if len(entries) == 0 {
		return styles.MutedText.Render("Không có dòng nhật ký")
	}

	width := m.logState.viewport.Width
	var b strings.Builder
	for i, e := range entries {
		b.WriteString(m.formatLogLine(e, styles, width))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) formatLogLine(e logtail.Entry, styles Styles, width int) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(m.levelStyle(e.Level, styles).Render(fmt.Sprintf("%-5s", strings.ToUpper(shortLevel(e.Level)))))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			if k == "stack" {
				continue
			}
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			b.WriteString(" ")
			b.WriteString(styles.AccentText.Render(k))
			b.WriteString(styles.FaintText.Render("=" + e.Fields[k]))
		}
	}
	line := b.String()
	if width > 0 && lipgloss.Width(line) > width {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

func shortLevel(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "warn"
	}
	return l.String()
}

// levelStyle returns the style for a log level.
func (m *Model) levelStyle(level logrus.Level, styles Styles) lipgloss.Style {
	switch level {
	case logrus.InfoLevel:
		return styles.SuccessText
	case logrus.WarnLevel:
		return styles.WarningText
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return styles.DangerText
	case logrus.DebugLevel, logrus.TraceLevel:
		return styles.InfoText
	default:
		return styles.Text
	}
}

func nextLogLevel(current logrus.Level) logrus.Level {
	for i, l := range logLevels {
		if l == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.logState.viewport
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()

	case key.Matches(msg, m.keys.CycleFilter):
		m.logState.minLevel = nextLogLevel(m.logState.minLevel)
		m.logState.dirty = true
		m.updateLogViewport()

	case key.Matches(msg, m.keys.Search):
		m.logState.searching = true
		m.logState.searchInput.SetValue(m.logState.query)
		return m, m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		m.logState.follow = false
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		m.logState.follow = true
	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.Up):
		vp.ScrollUp(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.PageDown):
		vp.PageDown()
		m.logState.follow = false
	case key.Matches(msg, m.keys.PageUp):
		vp.PageUp()
		m.logState.follow = false
	}
	return m, nil
}

// handleLogSearchInput edits the log filter. Enter applies it, esc cancels.
func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.logState.query = strings.TrimSpace(m.logState.searchInput.Value())
		m.logState.searching = false
		m.logState.searchInput.Blur()
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil
	case tea.KeyEsc:
		m.logState.searching = false
		m.logState.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// clearLogQuery drops the text filter.
func (m *Model) clearLogQuery() {
	m.logState.query = ""
	m.logState.dirty = true
	m.updateLogViewport()
}
