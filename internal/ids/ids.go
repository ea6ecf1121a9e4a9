// Package ids generates identifiers for records created locally.
package ids

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ProductPrefix marks ids that were never assigned by the remote catalog
const ProductPrefix = "product-"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a time-ordered unique identifier
func New() string {
	return NewAt(time.Now())
}

// NewAt returns an identifier whose time component is t
func NewAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewProductID returns an id for a locally created product
func NewProductID() string {
	return ProductPrefix + strings.ToLower(New())
}

// IsLocal reports whether a product id was generated on this client
func IsLocal(id string) bool {
	return strings.HasPrefix(id, ProductPrefix)
}
