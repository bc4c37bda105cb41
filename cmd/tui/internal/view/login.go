package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/recyclehub/recyclehub/internal/user"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type LoginModel struct {
	CommonModel
	users *user.Service

	form *huh.Form
	err  error
}

func NewLoginModel(users *user.Service) LoginModel {
	return LoginModel{users: users, form: buildLoginForm()}
}

func buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email"),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	)
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Enter: submit | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		if result.err != nil {
			m.err = result.err
			m.form = buildLoginForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{User: result.user} }
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.loginCmd(m.form.GetString("email"), m.form.GetString("password"))
	}

	return m, cmd
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		u, err := m.users.Authenticate(ctx, email, password)

		return loginResultMsg{user: u, err: err}
	}
}

func (m LoginModel) View() string {
	body := "RecycleHub\n\n" + m.form.View()
	if m.err != nil {
		body += "\n" + errStyle.Render(m.err.Error())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
