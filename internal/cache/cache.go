// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists pipeline results keyed by normalized query+filters
// with a TTL. Concurrent invocations may read and write the same key; writes
// are idempotent upserts and last-writer-wins is acceptable because the
// payload is derived from the key.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ErrMiss is returned when a key is absent or its entry has expired.
var ErrMiss = errors.New("cache miss")

// Store is a SQLite-backed read-through cache.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// Open creates or opens the cache database at cfg.Path and ensures the
// schema exists.
func Open(cfg types.CacheConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		stored_at TEXT NOT NULL
	)`)
	return err
}

// Key derives the cache key for a review request: a sha256 over the
// normalized query and filter fields. Identical requests always map to the
// same key.
func Key(req types.ReviewRequest) string {
	// json.Marshal on a struct has deterministic field order.
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Get returns the payload stored under key, or ErrMiss if absent or expired.
// Expired entries are deleted on read.
func (s *Store) Get(key string) ([]byte, error) {
	var payload []byte
	var storedAt string
	err := s.db.QueryRow(
		`SELECT payload, stored_at FROM entries WHERE key = ?`, key,
	).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, storedAt)
	if err != nil || s.now().Sub(t) > s.ttl {
		s.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
		return nil, ErrMiss
	}
	return payload, nil
}

// Put upserts payload under key. Re-putting the same key replaces the entry
// and refreshes its TTL.
func (s *Store) Put(key string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (key, payload, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, stored_at=excluded.stored_at`,
		key, payload, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Prune removes every expired entry and returns the number deleted.
func (s *Store) Prune() (int, error) {
	cutoff := s.now().Add(-s.ttl).UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(`DELETE FROM entries WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
