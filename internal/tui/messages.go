package tui

import (
	"github.com/mmcdole/kiosk/internal/domain"
)

// Message types for the TUI

// SessionValidatedMsg carries the outcome of startup validation
type SessionValidatedMsg struct {
	Session domain.Session
}

// LoginResultMsg carries the outcome of a login attempt
type LoginResultMsg struct {
	Err error
}

// LogoutMsg signals that the session was cleared
type LogoutMsg struct {
	Err error
}

// CatalogLoadedMsg signals that a refetch finished (successfully or not)
type CatalogLoadedMsg struct {
	Err error
}

// SearchSettledMsg is sent once search input has been idle for the debounce delay
type SearchSettledMsg struct {
	Text string
}

// NotificationMsg carries a notification slot change
type NotificationMsg struct {
	Notification domain.Notification
}
