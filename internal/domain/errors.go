package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrInvalidCredentials indicates the identity API rejected a login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshFailed indicates a refresh token could not mint a new access token
	ErrRefreshFailed = errors.New("refresh failed")

	// ErrUnauthorized indicates an access token was rejected (missing, expired or revoked)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProductsUnavailable indicates the catalog API did not return a page
	ErrProductsUnavailable = errors.New("products unavailable")

	// ErrServerOffline indicates the remote API is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrNotAuthenticated indicates an operation needs a logged-in session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrProductNotFound indicates a local edit targeted an id not on the current page
	ErrProductNotFound = errors.New("product not found")
)

// AuthError is returned by identity operations (login, refresh, current user)
type AuthError struct {
	Op  string // "login", "refresh" or "me"
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError is returned when a catalog page cannot be loaded
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError holds per-field messages for rejected form input.
// It never reaches a network boundary.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or "" if it passed
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// UserMessage converts an error into text suitable for a notification
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "please fix the highlighted fields"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid login or password"
	case errors.Is(err, ErrRefreshFailed), errors.Is(err, ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, ErrProductsUnavailable):
		return "products unavailable"
	case errors.Is(err, ErrServerOffline):
		return "server is unreachable"
	case errors.Is(err, ErrProductNotFound):
		return "product is no longer on this page"
	default:
		return err.Error()
	}
}
