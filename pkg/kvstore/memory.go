package kvstore

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Store backed by a plain map. Expired records are
// pruned lazily on read and enumeration, so the map stays bounded by the set
// of live tokens without a background sweeper.
//
// It is safe for concurrent use by multiple request goroutines.
type Memory struct {
	mu      sync.RWMutex
	records map[string]memoryRecord

	// Clock is overridable for tests. Defaults to time.Now.
	Clock func() time.Time
}

type memoryRecord struct {
	value []byte

	// deadline is the zero time for records without an expiry.
	deadline time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]memoryRecord)}
}

func (m *Memory) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

func (r memoryRecord) expired(now time.Time) bool {
	return !r.deadline.IsZero() && !now.Before(r.deadline)
}

// Get returns the value for key, pruning it first if its ttl has elapsed.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	now := m.now()

	m.mu.RLock()
	rec, ok := m.records[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	if rec.expired(now) {
		m.mu.Lock()
		// Re-check under the write lock, a concurrent Put may have renewed it.
		if cur, ok := m.records[key]; ok && cur.expired(now) {
			delete(m.records, key)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	// Hand out a copy so callers can't mutate the stored value.
	out := make([]byte, len(rec.value))
	copy(out, rec.value)
	return out, nil
}

// Put writes value under key, replacing any previous record.
func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := memoryRecord{value: make([]byte, len(value))}
	copy(rec.value, value)

	if ttl > 0 {
		rec.deadline = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.records[key] = rec
	m.mu.Unlock()
	return nil
}

// Keys returns every key that has not expired, dropping any that have.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.records))
	for key, rec := range m.records {
		if rec.expired(now) {
			delete(m.records, key)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SupportsTTL reports true; Put deadlines are honoured on read.
func (m *Memory) SupportsTTL() bool { return true }

// Len reports the number of records currently held, expired ones included.
// Mostly useful in tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
