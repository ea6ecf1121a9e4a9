package domain

import (
	"context"
)

// AuthGateway talks to the remote identity API.
// Each call is a single round trip; retry policy lives in the session layer.
type AuthGateway interface {
	// Login exchanges a login/password pair for a token pair.
	// Fails with an AuthError wrapping ErrInvalidCredentials on rejection.
	Login(ctx context.Context, login, password string) (*AuthResult, error)

	// Refresh mints a new access token.
	// Fails with an AuthError wrapping ErrRefreshFailed on rejection.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// CurrentUser resolves the identity behind an access token.
	// Fails with an AuthError wrapping ErrUnauthorized on rejection, including expiry.
	CurrentUser(ctx context.Context, accessToken string) (*Identity, error)
}

// ProductGateway loads catalog pages from the remote catalog API
type ProductGateway interface {
	// Fetch issues exactly one request for the page described by q.
	// Fails with a FetchError wrapping ErrProductsUnavailable on rejection.
	Fetch(ctx context.Context, q CatalogQuery) (CatalogResult, error)
}

// CredentialTier is one key/value scope for token persistence
// (durable: survives restarts, session: process lifetime)
type CredentialTier interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// CredentialStore persists the token pair in exactly one tier
type CredentialStore interface {
	// Save writes both tokens to the durable or session tier and
	// removes any copy from the other tier.
	Save(accessToken, refreshToken string, durable bool) error

	// Load reads the durable tier first, then the session tier.
	// ok is false when no complete pair is stored.
	Load() (creds Credentials, ok bool)

	// Clear removes tokens from both tiers
	Clear() error

	// IsDurable reports whether the durable tier currently holds a token
	IsDurable() bool
}
