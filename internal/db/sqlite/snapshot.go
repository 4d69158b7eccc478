// Package sqlite persists index snapshots as single-file SQLite databases.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/kailas-cloud/wayfarer/internal/db"
)

// Compile-time check: SnapshotStore implements db.SnapshotStore.
var _ db.SnapshotStore = SnapshotStore{}

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE documents (
	seq          INTEGER PRIMARY KEY,
	id           TEXT NOT NULL UNIQUE,
	text         TEXT NOT NULL,
	destination  TEXT NOT NULL,
	categories   TEXT NOT NULL,
	locations    TEXT NOT NULL,
	source_name  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	source_type  TEXT NOT NULL,
	embedding    BLOB NOT NULL
);
`

const (
	metaFormatVersion = "format_version"
	metaDimension     = "dimension"
	metaModel         = "model"
	metaCreatedAt     = "created_at"
)

// SnapshotStore writes and reads index snapshots. It holds no state; every call opens its own file.
type SnapshotStore struct{}

// WriteSnapshot writes snap to path atomically: rows go to a temp file in the same
// directory, which is renamed over path after commit.
func (SnapshotStore) WriteSnapshot(ctx context.Context, path string, snap *db.Snapshot) error {
	if err := writeSnapshot(ctx, path, snap); err != nil {
		return &db.Error{Op: db.OpSnapshotWrite, Err: err}
	}
	return nil
}

func writeSnapshot(ctx context.Context, path string, snap *db.Snapshot) error {
	if path == "" {
		return errors.New("snapshot path required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	conn, err := open(tmpPath)
	if err != nil {
		return err
	}
	if err := fill(ctx, conn, snap); err != nil {
		_ = conn.Close()
		return err
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func fill(ctx context.Context, conn *sql.DB, snap *db.Snapshot) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	createdAt := snap.Meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	meta := map[string]string{
		metaFormatVersion: strconv.Itoa(db.SnapshotFormatVersion),
		metaDimension:     strconv.Itoa(snap.Meta.Dimension),
		metaModel:         snap.Meta.Model,
		metaCreatedAt:     createdAt.Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents
		(seq, id, text, destination, categories, locations, source_name, source_url, source_type, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // closed with tx

	for i, r := range snap.Records {
		cats, err := marshalList(r.Categories)
		if err != nil {
			return err
		}
		locs, err := marshalList(r.Locations)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, i, r.ID, r.Text, r.Destination, cats, locs,
			r.SourceName, r.SourceURL, r.SourceType, db.EncodeVector(r.Embedding))
		if err != nil {
			return fmt.Errorf("insert document %q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot. Records come back in insertion order.
func (SnapshotStore) ReadSnapshot(ctx context.Context, path string) (*db.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, db.ErrSnapshotNotFound
		}
		return nil, &db.Error{Op: db.OpSnapshotRead, Err: err}
	}

	snap, err := readSnapshot(ctx, path)
	if err != nil {
		return nil, &db.Error{Op: db.OpSnapshotRead, Err: err}
	}
	return snap, nil
}

func readSnapshot(ctx context.Context, path string) (*db.Snapshot, error) {
	conn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer conn.Close() //nolint:errcheck // read-only

	meta, err := readMeta(ctx, conn)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `SELECT id, text, destination, categories, locations,
		source_name, source_url, source_type, embedding FROM documents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %w", db.ErrSnapshotCorrupt, err)
	}
	defer rows.Close() //nolint:errcheck // drained below

	var records []db.SnapshotRecord
	for rows.Next() {
		var (
			r          db.SnapshotRecord
			cats, locs string
			blob       []byte
		)
		if err := rows.Scan(&r.ID, &r.Text, &r.Destination, &cats, &locs,
			&r.SourceName, &r.SourceURL, &r.SourceType, &blob); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if r.Categories, err = unmarshalList(cats); err != nil {
			return nil, err
		}
		if r.Locations, err = unmarshalList(locs); err != nil {
			return nil, err
		}
		if r.Embedding, err = db.DecodeVector(blob); err != nil {
			return nil, fmt.Errorf("document %q: %w", r.ID, err)
		}
		if len(r.Embedding) != meta.Dimension {
			return nil, fmt.Errorf("%w: document %q has %d dims, snapshot declares %d",
				db.ErrSnapshotCorrupt, r.ID, len(r.Embedding), meta.Dimension)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return &db.Snapshot{Meta: meta, Records: records}, nil
}

func readMeta(ctx context.Context, conn *sql.DB) (db.SnapshotMeta, error) {
	rows, err := conn.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return db.SnapshotMeta{}, fmt.Errorf("%w: query meta: %w", db.ErrSnapshotCorrupt, err)
	}
	defer rows.Close() //nolint:errcheck // drained below

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return db.SnapshotMeta{}, fmt.Errorf("scan meta: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return db.SnapshotMeta{}, fmt.Errorf("iterate meta: %w", err)
	}

	var meta db.SnapshotMeta
	if meta.FormatVersion, err = strconv.Atoi(kv[metaFormatVersion]); err != nil {
		return db.SnapshotMeta{}, fmt.Errorf("%w: format_version %q", db.ErrSnapshotCorrupt, kv[metaFormatVersion])
	}
	if meta.FormatVersion != db.SnapshotFormatVersion {
		return db.SnapshotMeta{}, fmt.Errorf("%w: unsupported format version %d", db.ErrSnapshotCorrupt, meta.FormatVersion)
	}
	if meta.Dimension, err = strconv.Atoi(kv[metaDimension]); err != nil || meta.Dimension <= 0 {
		return db.SnapshotMeta{}, fmt.Errorf("%w: dimension %q", db.ErrSnapshotCorrupt, kv[metaDimension])
	}
	meta.Model = kv[metaModel]
	if ts := kv[metaCreatedAt]; ts != "" {
		if meta.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return db.SnapshotMeta{}, fmt.Errorf("%w: created_at %q", db.ErrSnapshotCorrupt, ts)
		}
	}
	return meta, nil
}

func open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(b), nil
}

func unmarshalList(s string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: list column: %w", db.ErrSnapshotCorrupt, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
