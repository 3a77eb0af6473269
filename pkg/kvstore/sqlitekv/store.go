// Package sqlitekv implements kvstore.Store on top of a SQLite database.
// It expects a kv_records table (see Schema); the auth service creates it
// through its embedded migrations, and EnsureSchema covers standalone use.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/kvstore"

	_ "modernc.org/sqlite"
)

// Schema is the table this store operates on. expires_at is a unix second
// timestamp, NULL for records without an expiry.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_kv_records_expires_at ON kv_records (expires_at);
`

// Store is a kvstore.Store over a shared *sql.DB. Expired rows are skipped
// on read and removed in bulk by PruneExpired, which the auth service drives
// from its housekeeping loop.
type Store struct {
	db *sql.DB

	// Clock is overridable for tests. Defaults to time.Now.
	Clock func() time.Time
}

// New wraps an existing database handle. The handle stays owned by the
// caller; Close it there.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) a sqlite database at dsn and ensures the schema
// exists. Use New instead when sharing a handle with other tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: open: %w", err)
	}
	s := &Store{db: db}
	if err := s.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the kv_records table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("sqlitekv: ensure schema: %w", err)
	}
	return nil
}

// Close releases the underlying handle. Only call this when the Store was
// created through Open.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Get returns the value for key, treating expired rows as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_records
		 WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().Unix(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
	}
	return value, nil
}

// Put upserts value under key. A ttl of zero stores the row without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_records (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
	}
	return nil
}

// Keys enumerates every unexpired key.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv_records WHERE expires_at IS NULL OR expires_at > ?`,
		s.now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
	}
	return keys, nil
}

// SupportsTTL reports true; expiry is enforced on read and by PruneExpired.
func (s *Store) SupportsTTL() bool { return true }

// PruneExpired deletes rows whose expiry has passed and returns how many
// were removed. Reads never return expired rows, so this is purely about
// keeping the table from growing without bound.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_records WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", kvstore.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
