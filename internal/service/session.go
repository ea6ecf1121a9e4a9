package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/kiosk/internal/domain"
)

// ErrBusy is returned when a login is started while another is in flight
var ErrBusy = errors.New("operation already in progress")

const msgLoggedIn = "logged in successfully"

// SessionOption configures a SessionController
type SessionOption func(*SessionController)

// WithTokenExpiry sets how the access token expiry is derived
func WithTokenExpiry(fn func(accessToken string) time.Time) SessionOption {
	return func(s *SessionController) { s.tokenExpiry = fn }
}

// WithSessionObserver registers fn to receive every session transition
func WithSessionObserver(fn func(domain.Session)) SessionOption {
	return func(s *SessionController) { s.onChange = fn }
}

// SessionController owns the login state machine. It starts in
// StateValidating and never performs more than one refresh per Validate.
type SessionController struct {
	auth        domain.AuthGateway
	creds       domain.CredentialStore
	notes       Notifications
	tokenExpiry func(string) time.Time
	onChange    func(domain.Session)
	logger      *slog.Logger

	mu      sync.Mutex
	session domain.Session
}

// NewSessionController creates a controller in the validating state.
// notes may be nil.
func NewSessionController(
	auth domain.AuthGateway,
	creds domain.CredentialStore,
	notes Notifications,
	logger *slog.Logger,
	opts ...SessionOption,
) *SessionController {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionController{
		auth:        auth,
		creds:       creds,
		notes:       notes,
		tokenExpiry: func(string) time.Time { return time.Time{} },
		logger:      logger,
		session:     domain.Session{State: domain.StateValidating},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a snapshot of the current session
func (s *SessionController) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Login authenticates and persists the token pair in the durable tier when
// remember is set, otherwise in the session tier. Form errors are returned
// as *domain.ValidationError without touching the network or the state.
func (s *SessionController) Login(ctx context.Context, login, password string, remember bool) error {
	if err := ValidateLogin(login, password); err != nil {
		return err
	}

	s.mu.Lock()
	if s.session.State == domain.StateAuthenticating {
		s.mu.Unlock()
		return ErrBusy
	}
	s.session = domain.Session{State: domain.StateAuthenticating}
	s.mu.Unlock()
	s.emit()

	res, err := s.auth.Login(ctx, login, password)
	if err != nil {
		msg := domain.UserMessage(err)
		s.logger.Warn("login failed", "login", login, "error", err)

		s.set(domain.Session{State: domain.StateAnonymous, Error: msg})
		s.notify(msg, domain.NotifyError)
		return err
	}

	if err := s.creds.Save(res.AccessToken, res.RefreshToken, remember); err != nil {
		s.logger.Error("failed to persist credentials", "error", err)
	}

	s.set(s.authenticated(res.Identity, res.AccessToken, res.RefreshToken))
	s.logger.Info("logged in", "user", res.Login, "durable", remember)
	s.notify(msgLoggedIn, domain.NotifySuccess)
	return nil
}

// Validate restores a stored session. An invalid access token gets exactly
// one refresh and one retried lookup; any other failure clears the store.
// It never notifies and always resolves to authenticated or anonymous.
func (s *SessionController) Validate(ctx context.Context) domain.Session {
	s.set(domain.Session{State: domain.StateValidating})

	creds, ok := s.creds.Load()
	if !ok {
		s.logger.Debug("no stored credentials")
		return s.set(domain.Session{State: domain.StateAnonymous})
	}

	id, err := s.auth.CurrentUser(ctx, creds.AccessToken)
	if err == nil {
		s.logger.Debug("stored session valid", "user", id.Login)
		return s.set(s.authenticated(*id, creds.AccessToken, creds.RefreshToken))
	}
	s.logger.Debug("stored access token rejected, refreshing", "error", err)

	access, err := s.auth.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		s.logger.Info("refresh failed, clearing session", "error", err)
		return s.reset()
	}

	if err := s.creds.Save(access, creds.RefreshToken, s.creds.IsDurable()); err != nil {
		s.logger.Error("failed to persist refreshed token", "error", err)
	}

	id, err = s.auth.CurrentUser(ctx, access)
	if err != nil {
		s.logger.Info("refreshed token rejected, clearing session", "error", err)
		return s.reset()
	}

	s.logger.Debug("session restored after refresh", "user", id.Login)
	return s.set(s.authenticated(*id, access, creds.RefreshToken))
}

// Logout clears stored credentials and the session. The session is
// anonymous afterwards even if the store reports an error.
func (s *SessionController) Logout() error {
	err := s.creds.Clear()
	s.set(domain.Session{State: domain.StateAnonymous})
	s.logger.Info("logged out")
	return err
}

// ClearError dismisses the last login failure
func (s *SessionController) ClearError() {
	s.mu.Lock()
	changed := s.session.Error != ""
	s.session.Error = ""
	s.mu.Unlock()
	if changed {
		s.emit()
	}
}

func (s *SessionController) authenticated(id domain.Identity, access, refresh string) domain.Session {
	return domain.Session{
		State:        domain.StateAuthenticated,
		UserID:       id.ID,
		Login:        id.Login,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.tokenExpiry(access),
	}
}

func (s *SessionController) reset() domain.Session {
	if err := s.creds.Clear(); err != nil {
		s.logger.Error("failed to clear credentials", "error", err)
	}
	return s.set(domain.Session{State: domain.StateAnonymous})
}

func (s *SessionController) set(next domain.Session) domain.Session {
	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	s.emit()
	return next
}

func (s *SessionController) emit() {
	if s.onChange != nil {
		s.onChange(s.Session())
	}
}

func (s *SessionController) notify(text string, kind domain.NotificationKind) {
	if s.notes != nil {
		s.notes.Show(text, kind)
	}
}
