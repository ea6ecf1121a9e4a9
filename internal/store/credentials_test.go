package store

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCredentials(t *testing.T) (*Credentials, *BoltTier, *MemoryTier) {
	t.Helper()
	durable, err := OpenBoltTier(filepath.Join(t.TempDir(), "kiosk.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { durable.Close() })

	session := NewMemoryTier()
	return NewCredentials(durable, session, nil), durable, session
}

func TestSaveDurableClearsSessionTier(t *testing.T) {
	creds, durable, session := newTestCredentials(t)

	require.NoError(t, creds.Save("a1", "r1", false))
	require.NoError(t, creds.Save("a2", "r2", true))

	_, ok := session.Get(KeyAccessToken)
	assert.False(t, ok, "session tier must not keep a stale token")
	_, ok = session.Get(KeyRefreshToken)
	assert.False(t, ok)

	v, ok := durable.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "a2", v)
	assert.True(t, creds.IsDurable())
}

func TestSaveSessionClearsDurableTier(t *testing.T) {
	creds, durable, _ := newTestCredentials(t)

	require.NoError(t, creds.Save("a1", "r1", true))
	require.NoError(t, creds.Save("a2", "r2", false))

	_, ok := durable.Get(KeyAccessToken)
	assert.False(t, ok)
	assert.False(t, creds.IsDurable())

	got, ok := creds.Load()
	require.True(t, ok)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)
	assert.False(t, got.Durable)
}

func TestLoadPrefersDurableTier(t *testing.T) {
	creds, durable, session := newTestCredentials(t)

	// Both tiers populated directly, bypassing Save
	require.NoError(t, session.Set(KeyAccessToken, "session-a"))
	require.NoError(t, session.Set(KeyRefreshToken, "session-r"))
	require.NoError(t, durable.Set(KeyAccessToken, "durable-a"))
	require.NoError(t, durable.Set(KeyRefreshToken, "durable-r"))

	got, ok := creds.Load()
	require.True(t, ok)
	assert.Equal(t, "durable-a", got.AccessToken)
	assert.True(t, got.Durable)
}

func TestLoadIgnoresIncompletePair(t *testing.T) {
	creds, durable, _ := newTestCredentials(t)
	require.NoError(t, durable.Set(KeyAccessToken, "only-access"))

	_, ok := creds.Load()
	assert.False(t, ok)
}

func TestClearRemovesBothTiers(t *testing.T) {
	creds, durable, session := newTestCredentials(t)
	require.NoError(t, durable.Set(KeyAccessToken, "a"))
	require.NoError(t, session.Set(KeyRefreshToken, "r"))

	require.NoError(t, creds.Clear())

	_, ok := creds.Load()
	assert.False(t, ok)
	_, ok = durable.Get(KeyAccessToken)
	assert.False(t, ok)
	_, ok = session.Get(KeyRefreshToken)
	assert.False(t, ok)
}

func TestBoltTierSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kiosk.db")

	tier, err := OpenBoltTier(path, nil)
	require.NoError(t, err)
	require.NoError(t, tier.Set(KeyAccessToken, "persisted"))
	require.NoError(t, tier.Close())

	reopened, err := OpenBoltTier(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "persisted", v)

	require.NoError(t, reopened.Delete(KeyAccessToken))
	_, ok = reopened.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestMemoryOnlyBoltTier(t *testing.T) {
	tier, err := OpenBoltTier("", nil)
	require.NoError(t, err)
	require.NoError(t, tier.Set("k", "v"))
	v, ok := tier.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.NoError(t, tier.Close())
}

type failingTier struct{ *MemoryTier }

func (f *failingTier) Delete(string) error { return errors.New("disk full") }

func TestClearReportsTierFailure(t *testing.T) {
	creds := NewCredentials(&failingTier{NewMemoryTier()}, NewMemoryTier(), nil)
	assert.Error(t, creds.Clear())
}

type failingSetTier struct{ *MemoryTier }

func (f *failingSetTier) Set(string, string) error { return errors.New("disk full") }

func TestFailedSaveKeepsPreviousPair(t *testing.T) {
	session := NewMemoryTier()
	creds := NewCredentials(&failingSetTier{NewMemoryTier()}, session, nil)

	require.NoError(t, creds.Save("a1", "r1", false))
	assert.Error(t, creds.Save("a2", "r2", true))

	got, ok := creds.Load()
	require.True(t, ok, "the session pair must survive a failed durable write")
	assert.Equal(t, "a1", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
}

func TestLoadIgnoresEmptyRefreshToken(t *testing.T) {
	creds, _, session := newTestCredentials(t)
	require.NoError(t, session.Set(KeyAccessToken, "a"))
	require.NoError(t, session.Set(KeyRefreshToken, ""))

	_, ok := creds.Load()
	assert.False(t, ok)
}

func TestBoltTierLogsReadFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tier, err := OpenBoltTier(filepath.Join(t.TempDir(), "kiosk.db"), logger)
	require.NoError(t, err)
	require.NoError(t, tier.Close())

	_, ok := tier.Get(KeyAccessToken)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "failed to read credential")
	assert.Contains(t, buf.String(), "level=WARN")
}
