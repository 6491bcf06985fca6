package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoginFunc performs the credential exchange and session save.
type LoginFunc func(ctx context.Context, username, password string) error

type loginDoneMsg struct{}
type loginErrMsg struct{ err error }

const (
	loginFieldUsername = iota
	loginFieldPassword
)

type loginModel struct {
	inputs   []textinput.Model
	focused  int
	login    LoginFunc
	pending  bool
	errMsg   string
	success  bool
	canceled bool
}

func newLoginForm(login LoginFunc) loginModel {
	m := loginModel{
		inputs: make([]textinput.Model, 2),
		login:  login,
	}

	const fieldWidth = 32

	m.inputs[loginFieldUsername] = textinput.New()
	m.inputs[loginFieldUsername].Placeholder = "Username"
	m.inputs[loginFieldUsername].Focus()
	m.inputs[loginFieldUsername].CharLimit = 100
	m.inputs[loginFieldUsername].Width = fieldWidth
	m.inputs[loginFieldUsername].Prompt = "│ "

	m.inputs[loginFieldPassword] = textinput.New()
	m.inputs[loginFieldPassword].Placeholder = "Password"
	m.inputs[loginFieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[loginFieldPassword].CharLimit = 100
	m.inputs[loginFieldPassword].Width = fieldWidth
	m.inputs[loginFieldPassword].Prompt = "│ "

	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.success = true
		return m, tea.Quit

	case loginErrMsg:
		m.pending = false
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		// One login in flight at a time.
		if m.pending {
			if msg.String() == "ctrl+c" {
				m.canceled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit

		case "enter":
			username := strings.TrimSpace(m.inputs[loginFieldUsername].Value())
			password := m.inputs[loginFieldPassword].Value()
			if username == "" || password == "" {
				m.errMsg = "Username and password are required"
				return m, nil
			}
			m.pending = true
			m.errMsg = ""
			login := m.login
			return m, func() tea.Msg {
				if err := login(context.Background(), username, password); err != nil {
					return loginErrMsg{err}
				}
				return loginDoneMsg{}
			}

		case "tab", "shift+tab", "up", "down":
			if msg.String() == "up" || msg.String() == "shift+tab" {
				m.focused--
			} else {
				m.focused++
			}
			if m.focused < 0 {
				m.focused = len(m.inputs) - 1
			} else if m.focused >= len(m.inputs) {
				m.focused = 0
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := 0; i < len(m.inputs); i++ {
				if i == m.focused {
					cmds[i] = m.inputs[i].Focus()
				} else {
					m.inputs[i].Blur()
				}
			}
			return m, tea.Batch(cmds...)
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *loginModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m loginModel) View() string {
	if m.success || m.canceled {
		return ""
	}

	outerStyle := lipgloss.NewStyle().Padding(2, 4)

	var b strings.Builder
	b.WriteString(StyleHeader.Render("Sign In"))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(StyleError.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	labels := []string{"Username", "Password"}
	for i, label := range labels {
		if i == m.focused {
			b.WriteString(StyleHighlight.Render("› " + label))
		} else {
			b.WriteString(StyleHelp.Render("  " + label))
		}
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.pending {
		b.WriteString(StyleHelp.Render("Signing in..."))
	} else {
		b.WriteString(RenderFooterBar([]ShortcutEntry{
			{Key: "", Label: "enter sign in"},
			{Key: "", Label: "tab navigate"},
			{Key: "", Label: "esc cancel"},
		}, ""))
	}
	b.WriteString("\n")

	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(StyleBorder.Render(innerPadding.Render(b.String())))
}

// RunLoginForm launches the interactive sign-in dialog. Returns true
// when the session was established.
func RunLoginForm(login LoginFunc) (bool, error) {
	m := newLoginForm(login)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running login form: %w", err)
	}

	fm, ok := finalModel.(loginModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type")
	}
	return fm.success, nil
}
