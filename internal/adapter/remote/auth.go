package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/kiosk/internal/domain"
)

// AuthGateway implements domain.AuthGateway against /auth/*
type AuthGateway struct {
	client        *Client
	expiresInMins int
}

var _ domain.AuthGateway = (*AuthGateway)(nil)

// NewAuthGateway creates an identity gateway. expiresInMins is sent with
// login and refresh requests when positive.
func NewAuthGateway(client *Client, expiresInMins int) *AuthGateway {
	return &AuthGateway{client: client, expiresInMins: expiresInMins}
}

// Login exchanges credentials for a token pair
func (g *AuthGateway) Login(ctx context.Context, login, password string) (*domain.AuthResult, error) {
	req := loginRequest{Username: login, Password: password, ExpiresInMins: g.expiresInMins}

	resp, err := g.client.do(ctx, http.MethodPost, "/auth/login", nil, req, "")
	if err != nil {
		return nil, &domain.AuthError{Op: "login", Err: err}
	}
	if !resp.ok() {
		return nil, &domain.AuthError{Op: "login", Err: domain.ErrInvalidCredentials}
	}

	var out loginResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, &domain.AuthError{Op: "login", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	access := out.AccessToken
	if access == "" {
		access = out.Token
	}
	if access == "" || out.RefreshToken == "" {
		return nil, &domain.AuthError{Op: "login", Err: domain.ErrInvalidCredentials}
	}

	login = firstNonEmpty(out.Username, login)
	g.client.logger.Info("login succeeded", "user", login)

	return &domain.AuthResult{
		Identity:     domain.Identity{ID: string(out.ID), Login: login},
		AccessToken:  access,
		RefreshToken: out.RefreshToken,
	}, nil
}

// Refresh mints a new access token from a refresh token
func (g *AuthGateway) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req := refreshRequest{RefreshToken: refreshToken, ExpiresInMins: g.expiresInMins}

	resp, err := g.client.do(ctx, http.MethodPost, "/auth/refresh", nil, req, "")
	if err != nil {
		return "", &domain.AuthError{Op: "refresh", Err: err}
	}
	if !resp.ok() {
		return "", &domain.AuthError{Op: "refresh", Err: domain.ErrRefreshFailed}
	}

	var out refreshResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", &domain.AuthError{Op: "refresh", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	access := firstNonEmpty(out.AccessToken, out.Token)
	if access == "" {
		return "", &domain.AuthError{Op: "refresh", Err: domain.ErrRefreshFailed}
	}
	return access, nil
}

// CurrentUser resolves the identity behind an access token
func (g *AuthGateway) CurrentUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	resp, err := g.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, accessToken)
	if err != nil {
		return nil, &domain.AuthError{Op: "me", Err: err}
	}
	if !resp.ok() {
		return nil, &domain.AuthError{Op: "me", Err: domain.ErrUnauthorized}
	}

	var out userResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, &domain.AuthError{Op: "me", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &domain.Identity{ID: string(out.ID), Login: out.Username}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
