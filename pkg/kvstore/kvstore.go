// Package kvstore defines the key-value contract the token blocklist is
// built on. Implementations range from the in-process memory store in this
// package to the sqlite-backed store in the sqlitekv subpackage; anything
// that can get, put and enumerate keys will do.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no value exists for the requested key.
	ErrNotFound = errors.New("kvstore: not found")

	// ErrUnavailable reports that the backing store could not be reached.
	// Callers should treat this as fatal for the current operation.
	ErrUnavailable = errors.New("kvstore: store unavailable")
)

// Store is the minimal key-value surface the blocklist needs. A ttl of zero
// on Put means the record never expires; stores that report SupportsTTL()
// false ignore the ttl entirely and must be pruned out-of-band.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes value under key. When ttl > 0 and the store supports TTL,
	// the record is dropped once the ttl elapses.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Keys enumerates every live key. This is O(store size) everywhere we
	// implement it, which is fine for the deployments we target.
	Keys(ctx context.Context) ([]string, error)

	// SupportsTTL reports whether Put honours its ttl argument. Checked
	// explicitly rather than probed, so callers can document the unbounded
	// growth trade-off when it returns false.
	SupportsTTL() bool
}
