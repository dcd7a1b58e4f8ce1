// Package selection tracks which users are currently choosing from a search
// result list. A user's pending selection points at its result set by cache
// key only, so a missing result set is a lookup miss, never a fault.
package selection

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hxnx/ncmbot/internal/netease"
)

// SelectionTTL is how long a numbered result list stays selectable.
const SelectionTTL = 60 * time.Second

// SweepInterval is how often expired selections are evicted.
const SweepInterval = 60 * time.Second

// PendingSelection is one open "awaiting a number" window.
type PendingSelection struct {
	CacheKey  string
	ExpiresAt time.Time
}

func (p PendingSelection) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// ResultCache owns the cacheKey → songs map. Stored slices must not be
// mutated after Put.
type ResultCache struct {
	mu   sync.RWMutex
	data map[string][]netease.Song
}

func NewResultCache() *ResultCache {
	return &ResultCache{data: make(map[string][]netease.Song)}
}

func (c *ResultCache) Put(cacheKey string, songs []netease.Song) {
	c.mu.Lock()
	c.data[cacheKey] = songs
	c.mu.Unlock()
}

func (c *ResultCache) Get(cacheKey string) ([]netease.Song, bool) {
	c.mu.RLock()
	songs, ok := c.data[cacheKey]
	c.mu.RUnlock()
	return songs, ok
}

// Remove is idempotent.
func (c *ResultCache) Remove(cacheKey string) {
	c.mu.Lock()
	delete(c.data, cacheKey)
	c.mu.Unlock()
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// SessionStore owns the userKey → PendingSelection map and keeps the result
// cache in step: at most one pending selection exists per user, and replacing
// or expiring one drops its result set.
type SessionStore struct {
	mu      sync.Mutex
	cache   *ResultCache
	waiting map[string]PendingSelection
}

func NewSessionStore(cache *ResultCache) *SessionStore {
	return &SessionStore{
		cache:   cache,
		waiting: make(map[string]PendingSelection),
	}
}

// Put upserts the pending selection for userKey. A prior selection's result
// set is removed first so repeated searches never leak cache entries.
func (s *SessionStore) Put(userKey, cacheKey string, ttl time.Duration) {
	s.mu.Lock()
	prior, had := s.waiting[userKey]
	s.waiting[userKey] = PendingSelection{
		CacheKey:  cacheKey,
		ExpiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()

	if had && prior.CacheKey != cacheKey {
		s.cache.Remove(prior.CacheKey)
	}
}

func (s *SessionStore) Get(userKey string) (PendingSelection, bool) {
	s.mu.Lock()
	pending, ok := s.waiting[userKey]
	s.mu.Unlock()
	return pending, ok
}

// Remove is idempotent and leaves the result set alone; callers that want
// both gone remove the result set via its cache key.
func (s *SessionStore) Remove(userKey string) {
	s.mu.Lock()
	delete(s.waiting, userKey)
	s.mu.Unlock()
}

// SweepExpired evicts every selection past its deadline together with its
// result set and reports the evicted user keys.
func (s *SessionStore) SweepExpired(now time.Time) []string {
	type expired struct {
		userKey  string
		cacheKey string
	}

	s.mu.Lock()
	var gone []expired
	for userKey, pending := range s.waiting {
		if pending.Expired(now) {
			gone = append(gone, expired{userKey, pending.CacheKey})
		}
	}
	for _, e := range gone {
		delete(s.waiting, e.userKey)
	}
	s.mu.Unlock()

	removed := make([]string, 0, len(gone))
	for _, e := range gone {
		s.cache.Remove(e.cacheKey)
		removed = append(removed, e.userKey)
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

// RunSweeper sweeps on a fixed interval until ctx is cancelled. A single bad
// iteration must not stop the loop.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *SessionStore) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("selection sweep panicked: %v", r)
		}
	}()

	if removed := s.SweepExpired(time.Now()); len(removed) > 0 {
		log.Printf("selection sweep: removed %d expired session(s)", len(removed))
	}
}
