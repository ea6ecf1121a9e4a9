// Package offline provides self-contained gateways that behave like the
// remote API. They back the -offline mode and the controller tests.
package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmcdole/kiosk/internal/clock"
	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/ids"
)

const (
	issuer            = "kiosk-offline"
	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour

	kindAccess  = "access"
	kindRefresh = "refresh"
)

// DefaultSecret signs offline tokens so stored sessions survive restarts
var DefaultSecret = []byte("kiosk-offline-demo")

// Claims are carried by offline access and refresh tokens
type Claims struct {
	Kind  string `json:"kind"`
	Login string `json:"login"`
	jwt.RegisteredClaims
}

type account struct {
	id       string
	password string
}

// AuthGateway issues HS256 tokens for a fixed set of accounts
type AuthGateway struct {
	mu         sync.RWMutex
	accounts   map[string]account
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
	logger     *slog.Logger
}

var _ domain.AuthGateway = (*AuthGateway)(nil)

// NewAuthGateway creates a gateway with the demo account admin/password.
// A nil secret uses DefaultSecret; a nil clock uses wall time.
func NewAuthGateway(secret []byte, accessTTL time.Duration, clk clock.Clock, logger *slog.Logger) *AuthGateway {
	if secret == nil {
		secret = DefaultSecret
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGateway{
		accounts:   map[string]account{"admin": {id: "1", password: "password"}},
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: defaultRefreshTTL,
		clock:      clk,
		logger:     logger,
	}
}

// AddAccount registers another login
func (g *AuthGateway) AddAccount(id, login, password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts[login] = account{id: id, password: password}
}

func (g *AuthGateway) Login(ctx context.Context, login, password string) (*domain.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.AuthError{Op: "login", Err: err}
	}

	g.mu.RLock()
	acct, ok := g.accounts[login]
	g.mu.RUnlock()
	if !ok || acct.password != password {
		g.logger.Debug("offline login rejected", "login", login)
		return nil, &domain.AuthError{Op: "login", Err: domain.ErrInvalidCredentials}
	}

	access, err := g.issue(kindAccess, acct.id, login, g.accessTTL)
	if err != nil {
		return nil, &domain.AuthError{Op: "login", Err: err}
	}
	refresh, err := g.issue(kindRefresh, acct.id, login, g.refreshTTL)
	if err != nil {
		return nil, &domain.AuthError{Op: "login", Err: err}
	}

	return &domain.AuthResult{
		Identity:     domain.Identity{ID: acct.id, Login: login},
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (g *AuthGateway) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.AuthError{Op: "refresh", Err: err}
	}

	claims, err := g.parse(refreshToken, kindRefresh)
	if err != nil {
		g.logger.Debug("offline refresh rejected", "error", err)
		return "", &domain.AuthError{Op: "refresh", Err: domain.ErrRefreshFailed}
	}

	access, err := g.issue(kindAccess, claims.Subject, claims.Login, g.accessTTL)
	if err != nil {
		return "", &domain.AuthError{Op: "refresh", Err: err}
	}
	return access, nil
}

func (g *AuthGateway) CurrentUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.AuthError{Op: "me", Err: err}
	}

	claims, err := g.parse(accessToken, kindAccess)
	if err != nil {
		return nil, &domain.AuthError{Op: "me", Err: domain.ErrUnauthorized}
	}

	g.mu.RLock()
	_, ok := g.accounts[claims.Login]
	g.mu.RUnlock()
	if !ok {
		return nil, &domain.AuthError{Op: "me", Err: domain.ErrUnauthorized}
	}
	return &domain.Identity{ID: claims.Subject, Login: claims.Login}, nil
}

func (g *AuthGateway) issue(kind, id, login string, ttl time.Duration) (string, error) {
	now := g.clock.Now().UTC()
	claims := Claims{
		Kind:  kind,
		Login: login,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        ids.New(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (g *AuthGateway) parse(token, kind string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.clock.Now),
	)

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}); err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, errors.New("unexpected token kind")
	}
	return claims, nil
}
