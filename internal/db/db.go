package db

import (
	"context"
	"time"
)

// Store is the cache backend facade used by the embedding cache.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SnapshotFormatVersion is bumped whenever the on-disk index layout changes.
const SnapshotFormatVersion = 1

// SnapshotMeta describes a persisted index.
type SnapshotMeta struct {
	FormatVersion int
	Dimension     int
	Model         string
	CreatedAt     time.Time
}

// SnapshotRecord is one persisted document row. Records are stored in insertion order.
type SnapshotRecord struct {
	ID          string
	Text        string
	Destination string
	Categories  []string
	Locations   []string
	SourceName  string
	SourceURL   string
	SourceType  string
	Embedding   []float32
}

// Snapshot is a complete persisted index.
type Snapshot struct {
	Meta    SnapshotMeta
	Records []SnapshotRecord
}

// SnapshotStore reads and writes index snapshots at a filesystem path.
type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, path string, snap *Snapshot) error
	ReadSnapshot(ctx context.Context, path string) (*Snapshot, error)
}
