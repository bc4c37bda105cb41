package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recyclehub/recyclehub/internal/user"
)

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// LoggedInMsg is emitted by the login view once credentials check out.
type LoggedInMsg struct {
	User *user.User
}
