package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// boundary holds a panic recovered from Update or View. It is shared by
// every copy of the Model so View can record a crash for the next Update.
type boundary struct {
	mu    sync.Mutex
	err   error
	stack string
}

func (b *boundary) record(r any, stack []byte, log logrus.FieldLogger) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	b.mu.Lock()
	first := b.err == nil
	if first {
		b.err = err
		b.stack = string(stack)
	}
	b.mu.Unlock()
	if first && log != nil {
		log.WithError(err).WithField("stack", string(stack)).Error("recovered panic in UI")
	}
}

func (b *boundary) crashed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err != nil
}

func (b *boundary) current() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *boundary) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = nil
	b.stack = ""
}

// handleCrashKey offers retry and home from the error screen.
func (m Model) handleCrashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Retry):
		m.boundary.reset()
		var cmds []tea.Cmd
		if m.feed != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.feed))
		}
		if cmd := m.reloadView(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Escape):
		m.boundary.reset()
		m.currentView = ViewHome
		m.modal = nil
		m.showHelp = false
		return m, nil
	}
	return m, nil
}

// renderCrash is the recoverable error screen. It uses only plain styles so
// it cannot fail the way the view it replaces did.
func (m Model) renderCrash() string {
	err := m.boundary.current()
	msg := "lỗi không xác định"
	if err != nil {
		msg = err.Error()
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Danger)).Bold(true).Render("Đã xảy ra lỗi"))
	b.WriteString("\n\n")
	b.WriteString(truncate(msg, 200))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Render("Chi tiết đã được ghi vào nhật ký."))
	b.WriteString("\n\n")
	b.WriteString("r  Thử lại    esc  Về trang chủ    e  Thoát")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Danger)).
		Padding(1, 2).
		Width(60).
		Render(b.String())

	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
