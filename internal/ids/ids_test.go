package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsTimeOrdered(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	first := NewAt(base)
	second := NewAt(base.Add(time.Millisecond))
	assert.Less(t, first, second)

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(base), parsed.Time())
}

func TestNewProductIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewProductID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.True(t, IsLocal(id))
	}
	assert.False(t, IsLocal("42"))
}
