package domain

import (
	"strconv"
	"time"
)

// SessionState is the position of the session in its lifecycle
type SessionState int

const (
	StateValidating SessionState = iota // Startup: restoring a stored session
	StateAnonymous
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the process-wide view of who is logged in.
// Authenticated implies both tokens are set and Error is empty.
type Session struct {
	State        SessionState
	UserID       string
	Login        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // Access token expiry, zero if unknown
	Error        string    // User-facing reason of the last failed login
}

// IsAuthenticated reports whether the session holds a validated identity
func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated
}

// IsLoading reports whether a login or startup validation is in flight
func (s Session) IsLoading() bool {
	return s.State == StateAuthenticating || s.State == StateValidating
}

// Identity is the user returned by the identity API
type Identity struct {
	ID    string
	Login string
}

// AuthResult contains the result of a successful login
type AuthResult struct {
	Identity
	AccessToken  string
	RefreshToken string
}

// Credentials is the persisted token pair
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Durable      bool // Stored in the tier that survives restarts
}

// IsZero reports whether no usable token pair is present
func (c Credentials) IsZero() bool {
	return c.AccessToken == "" || c.RefreshToken == ""
}

// Product is a catalog record. ID never changes after creation.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Vendor      string  `json:"vendor"`
	SKU         string  `json:"sku"`
	Rating      float64 `json:"rating"` // 1-5 for local records, 0 when the remote has none
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// ProductForm is raw user input for creating or editing a product
type ProductForm struct {
	Name   string
	Price  string
	Vendor string
	SKU    string
}

// FormFromProduct pre-fills a form for editing
func FormFromProduct(p Product) ProductForm {
	return ProductForm{
		Name:   p.Name,
		Price:  strconv.FormatFloat(p.Price, 'f', -1, 64),
		Vendor: p.Vendor,
		SKU:    p.SKU,
	}
}

// SortField names a sortable product attribute
type SortField string

const (
	SortByName   SortField = "name"
	SortByPrice  SortField = "price"
	SortByRating SortField = "rating"
	SortByVendor SortField = "vendor"
	SortBySKU    SortField = "sku"
)

// SortFields lists fields in the order the UI cycles through them
var SortFields = []SortField{SortByName, SortByPrice, SortByRating, SortByVendor, SortBySKU}

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort is a field/direction pair
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// CatalogResult is one page of products as returned by a gateway
type CatalogResult struct {
	Items []Product
	Total int
}

// NotificationKind classifies a notification
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is the single-slot transient message
type Notification struct {
	Text    string
	Kind    NotificationKind
	Visible bool
}
