package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdesk/internal/auth"
	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/shopapi"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// placeModal centers a bordered dialog.
func placeModal(theme Theme, width, height int, title, body string) string {
	content := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent)).Bold(true).Render(title) + "\n\n" + body
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(min(max(width-8, 30), 64)).
		Render(content)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	title     string
	message   string
	onConfirm func() tea.Cmd
}

func newConfirmModal(title, message string, onConfirm func() tea.Cmd) *confirmModal {
	return &confirmModal{title: title, message: message, onConfirm: onConfirm}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Confirm), k.String() == "y":
		return c, c.onConfirm(), true
	case key.Matches(k, keys.Escape), k.String() == "n":
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(c.message) + "\n\n" +
		styles.AccentText.Render("enter/y") + styles.FaintText.Render(" đồng ý   ") +
		styles.AccentText.Render("esc/n") + styles.FaintText.Render(" hủy")
	return placeModal(theme, width, height, c.title, body)
}

// logoModal asks which of several active logos to keep.
type logoModal struct {
	logos    []shopapi.Setting
	selected int
	resolve  func(id int64) tea.Cmd
}

func (m Model) newLogoModal(logos []shopapi.Setting) *logoModal {
	console := m.admin
	return &logoModal{
		logos: logos,
		resolve: func(id int64) tea.Cmd {
			return m.actionThen("resolve logo", "Đã chọn logo", true, func(ctx context.Context) error {
				return console.ResolveLogo(ctx, id)
			}, settingsChecked)
		},
	}
}

func (l *logoModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil, false
	}
	switch {
	case key.Matches(k, keys.Down):
		l.selected = clampIndex(l.selected+1, len(l.logos))
	case key.Matches(k, keys.Up):
		l.selected = clampIndex(l.selected-1, len(l.logos))
	case key.Matches(k, keys.Confirm):
		if len(l.logos) == 0 {
			return l, nil, true
		}
		return l, l.resolve(l.logos[l.selected].ID), true
	case key.Matches(k, keys.Escape):
		return l, nil, true
	}
	return l, nil, false
}

func (l *logoModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.WarningText.Render(fmt.Sprintf("Có %d logo đang được bật. Chọn logo muốn giữ:", len(l.logos))))
	b.WriteString("\n\n")
	for i, s := range l.logos {
		line := fmt.Sprintf("%s %s", ternary(i == l.selected, "›", " "), truncate(s.Name, 40))
		if len(s.Medias) > 0 {
			line += fmt.Sprintf("  (%d ảnh)", len(s.Medias))
		}
		if i == l.selected {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Render("enter") + styles.FaintText.Render(" chọn   ") +
		styles.AccentText.Render("esc") + styles.FaintText.Render(" để sau"))
	return placeModal(theme, width, height, "Xung đột logo", b.String())
}

// loginModal collects credentials.
type loginModal struct {
	username textinput.Model
	password textinput.Model
	focus    int
	errMsg   string
	submit   func(auth.LoginRequest) tea.Cmd
}

func newLoginModal(username, errMsg string, submit func(auth.LoginRequest) tea.Cmd) *loginModal {
	user := textinput.New()
	user.Placeholder = "Tên đăng nhập"
	user.Prompt = "Tài khoản: "
	user.CharLimit = 64
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "Mật khẩu"
	pass.Prompt = "Mật khẩu:  "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	l := &loginModal{username: user, password: pass, errMsg: errMsg, submit: submit}
	if username != "" {
		l.focus = 1
		l.password.Focus()
	} else {
		l.username.Focus()
	}
	return l
}

func (l *loginModal) setFocus(i int) {
	l.focus = i
	if i == 0 {
		l.username.Focus()
		l.password.Blur()
	} else {
		l.password.Focus()
		l.username.Blur()
	}
}

func (l *loginModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			return l, nil, true
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			l.setFocus(1 - l.focus)
			return l, nil, false
		case tea.KeyEnter:
			if l.focus == 0 {
				l.setFocus(1)
				return l, nil, false
			}
			req := auth.LoginRequest{
				Username: strings.TrimSpace(l.username.Value()),
				Password: l.password.Value(),
			}
			if req.Username == "" || req.Password == "" {
				l.errMsg = "Vui lòng nhập tài khoản và mật khẩu"
				return l, nil, false
			}
			return l, l.submit(req), true
		}
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd, false
}

func (l *loginModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(l.username.View())
	b.WriteString("\n")
	b.WriteString(l.password.View())
	b.WriteString("\n\n")
	if l.errMsg != "" {
		b.WriteString(styles.DangerText.Render(l.errMsg))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.AccentText.Render("tab") + styles.FaintText.Render(" chuyển ô   ") +
		styles.AccentText.Render("enter") + styles.FaintText.Render(" đăng nhập   ") +
		styles.AccentText.Render("esc") + styles.FaintText.Render(" hủy"))
	return placeModal(theme, width, height, "Đăng nhập", b.String())
}

func (m Model) loginCmd(req auth.LoginRequest) tea.Cmd {
	service, ctx := m.auth, m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		user, err := service.Login(actx, req)
		if err != nil {
			// Keep the username for the retry prompt.
			user.Username = req.Username
		}
		return loginDoneMsg{user: user, err: err}
	}
}

// toggleLogin signs out when signed in, otherwise opens the login prompt.
func (m Model) toggleLogin() (tea.Model, tea.Cmd) {
	if m.auth.Session == nil {
		m.toasts.Error("Không có phiên đăng nhập")
		return m, nil
	}
	if m.auth.Session.SignedIn() {
		if err := m.auth.Logout(); err != nil {
			m.log.WithError(err).Warn("logout failed")
			m.toasts.Error(notify.Friendly(err))
			return m, nil
		}
		m.console.loaded = [tabCount]bool{}
		m.toasts.Info("Đã đăng xuất")
		return m, nil
	}
	m.modal = newLoginModal("", "", m.loginCmd)
	return m, nil
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("username", msg.user.Username).Warn("login failed")
		m.modal = newLoginModal(msg.user.Username, notify.Friendly(msg.err), m.loginCmd)
		return m, nil
	}
	name := msg.user.Name
	if name == "" {
		name = msg.user.Username
	}
	m.toasts.Info("Xin chào " + name)
	m.console.loaded = [tabCount]bool{}
	if m.currentView == ViewAdmin && m.isAdmin() {
		m.console.loaded[m.console.tab] = true
		return m, m.loadAdminTab(m.console.tab)
	}
	return m, nil
}
