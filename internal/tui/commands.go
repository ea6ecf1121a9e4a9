package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/kiosk/internal/service"
)

// Command factories for async operations

const requestTimeout = 30 * time.Second

// ValidateSessionCmd restores a stored session at startup
func ValidateSessionCmd(svc *service.SessionController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return SessionValidatedMsg{Session: svc.Validate(ctx)}
	}
}

// LoginCmd authenticates with the entered credentials
func LoginCmd(svc *service.SessionController, login, password string, remember bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return LoginResultMsg{Err: svc.Login(ctx, login, password, remember)}
	}
}

// LogoutCmd clears the stored session
func LogoutCmd(svc *service.SessionController) tea.Cmd {
	return func() tea.Msg {
		return LogoutMsg{Err: svc.Logout()}
	}
}

// RefetchCmd loads the catalog page for the controller's current query
func RefetchCmd(svc *service.CatalogController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return CatalogLoadedMsg{Err: svc.Refetch(ctx)}
	}
}
