package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/kiosk/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCredentials = []byte("credentials")
)

// BoltTier is the durable credential tier, backed by BoltDB with an
// in-memory read cache.
type BoltTier struct {
	db     *bolt.DB
	logger *slog.Logger
	mu     sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string]string
}

var _ domain.CredentialTier = (*BoltTier)(nil)

// OpenBoltTier opens (or creates) the database at path.
// An empty path gives a memory-only tier, which is useful for tests.
func OpenBoltTier(path string, logger *slog.Logger) (*BoltTier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return &BoltTier{logger: logger, cache: make(map[string]string)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCredentials)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltTier{db: db, logger: logger, cache: make(map[string]string)}, nil
}

func (s *BoltTier) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltTier) Get(key string) (string, bool) {
	// Check memory cache first
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", false
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to read credential", "key", key, "error", err)
		return "", false
	}

	if value == nil {
		return "", false
	}

	s.mu.Lock()
	s.cache[key] = string(value)
	s.mu.Unlock()

	return string(value), true
}

func (s *BoltTier) Set(key, value string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketCredentials).Put([]byte(key), []byte(value))
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return nil
}

func (s *BoltTier) Delete(key string) error {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// MemoryTier is the session credential tier; it lives as long as the process
type MemoryTier struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ domain.CredentialTier = (*MemoryTier)(nil)

// NewMemoryTier creates an empty session tier
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{values: make(map[string]string)}
}

func (m *MemoryTier) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryTier) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryTier) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
