package store

import (
	"errors"
	"log/slog"

	"github.com/mmcdole/kiosk/internal/domain"
)

// Key names shared by both tiers
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
)

// Credentials keeps the token pair in exactly one of two tiers and reads
// through durable → session.
type Credentials struct {
	durable domain.CredentialTier
	session domain.CredentialTier
	logger  *slog.Logger
}

var _ domain.CredentialStore = (*Credentials)(nil)

// NewCredentials combines a durable and a session tier
func NewCredentials(durable, session domain.CredentialTier, logger *slog.Logger) *Credentials {
	if logger == nil {
		logger = slog.Default()
	}
	return &Credentials{durable: durable, session: session, logger: logger}
}

func (c *Credentials) Save(accessToken, refreshToken string, durable bool) error {
	target, other := c.session, c.durable
	if durable {
		target, other = c.durable, c.session
	}

	// The other tier keeps the previous pair until the new one is written
	if err := target.Set(KeyAccessToken, accessToken); err != nil {
		c.logger.Error("failed to save credentials", "durable", durable, "error", err)
		return err
	}
	if err := target.Set(KeyRefreshToken, refreshToken); err != nil {
		c.logger.Error("failed to save credentials", "durable", durable, "error", err)
		return err
	}
	if err := clearTier(other); err != nil {
		return err
	}

	c.logger.Debug("saved credentials", "durable", durable)
	return nil
}

func (c *Credentials) Load() (domain.Credentials, bool) {
	if creds, ok := readTier(c.durable); ok {
		creds.Durable = true
		return creds, true
	}
	if creds, ok := readTier(c.session); ok {
		return creds, true
	}
	return domain.Credentials{}, false
}

func (c *Credentials) Clear() error {
	err := errors.Join(clearTier(c.durable), clearTier(c.session))
	if err != nil {
		c.logger.Error("failed to clear credentials", "error", err)
		return err
	}
	c.logger.Debug("cleared credentials")
	return nil
}

func (c *Credentials) IsDurable() bool {
	_, ok := c.durable.Get(KeyAccessToken)
	return ok
}

func readTier(t domain.CredentialTier) (domain.Credentials, bool) {
	access, _ := t.Get(KeyAccessToken)
	refresh, _ := t.Get(KeyRefreshToken)
	creds := domain.Credentials{AccessToken: access, RefreshToken: refresh}
	if creds.IsZero() {
		return domain.Credentials{}, false
	}
	return creds, true
}

func clearTier(t domain.CredentialTier) error {
	return errors.Join(t.Delete(KeyAccessToken), t.Delete(KeyRefreshToken))
}
