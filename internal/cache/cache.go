// Package cache provides the process-lifetime TTL store behind the
// aggregation facade. The facade is the only component that touches it;
// providers and the cascade stay cache-unaware.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Key builders. Keys are deterministic functions of request parameters so
// identical requests map to the same entry.
func ListingKey(page, perPage int) string {
	return fmt.Sprintf("listing:%d:%d", page, perPage)
}

func DetailKey(assetID string) string {
	return "detail:" + assetID
}

func HistoryKey(assetID string, days int) string {
	return fmt.Sprintf("history:%s:%d", assetID, days)
}

func NewsKey() string {
	return "news"
}

type entry struct {
	payload  any
	storedAt time.Time
	ttl      time.Duration
}

// Store is a mutex-guarded key-to-entry map. Expired entries are treated
// as absent on read and simply superseded by the next write; there is no
// background reaper.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock creates a store with a custom clock (for testing).
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Get returns the payload for key if a fresh entry exists.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.storedAt) > e.ttl {
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key, stamping the current time.
func (s *Store) Put(key string, payload any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{payload: payload, storedAt: s.now(), ttl: ttl}
}

// Mutate applies fn to the current payload under the write lock, storing
// the returned payload when fn reports true. fresh tells fn whether a
// non-expired entry was present. The entry's insertion timestamp is kept:
// refining a payload does not extend its lifetime.
func (s *Store) Mutate(key string, fn func(current any, fresh bool) (any, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	fresh := ok && s.now().Sub(e.storedAt) <= e.ttl
	var current any
	if fresh {
		current = e.payload
	}

	updated, store := fn(current, fresh)
	if !store {
		return
	}
	if fresh {
		e.payload = updated
		s.entries[key] = e
	}
}

// Invalidate removes every entry whose key starts with prefix; an empty
// prefix clears the whole store. Used by caller-visible refresh actions.
func (s *Store) Invalidate(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefix == "" {
		s.entries = make(map[string]entry)
		return
	}
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
