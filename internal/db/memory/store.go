// Package memory is an in-process LRU implementation of db.Store.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/wayfarer/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultSize is used when Config.Size is not positive.
const DefaultSize = 10000

// Config holds LRU sizing.
type Config struct {
	Size int
	// TTL applies to plain Set calls; zero keeps entries until evicted.
	TTL time.Duration
}

// Store keeps values in a bounded LRU. Per-key TTLs from SetWithTTL are tracked
// alongside the entry and checked on read.
type Store struct {
	cache *expirable.LRU[string, entry]
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewStore creates an LRU store.
func NewStore(cfg Config) (*Store, error) {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("ttl must not be negative")
	}
	return &Store{cache: expirable.NewLRU[string, entry](size, nil, cfg.TTL)}, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close drops all entries.
func (s *Store) Close() { s.cache.Purge() }

// WaitForReady is immediate for an in-process store.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get returns a copy of the stored value or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.cache.Remove(key)
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.cache.Add(key, entry{value: clone(value)})
	return nil
}

// SetWithTTL stores a copy of value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Add(key, entry{value: clone(value), expiresAt: time.Now().Add(ttl)})
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return s.cache.Len() }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
