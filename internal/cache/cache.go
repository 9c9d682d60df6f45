package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Resource classes used as the first half of every cache key.
const (
	ResourceGoals = "goals"
	ResourceRuns  = "runs"
	ResourceAuth  = "auth"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Store is a read-through cache keyed by (resource, id-or-filter).
//
// Invalidation is explicit and declared per mutation by the data services;
// there is no background eviction. Identical concurrent fills are
// deduplicated, so N views asking for the same page issue one request.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

func key(resource, k string) string {
	return resource + "\x00" + k
}

// Get returns the cached value regardless of age. The staleness decision
// belongs to GetOrFill; Get exists for keep-previous-data reads.
func (s *Store) Get(resource, k string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key(resource, k)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Put stores a value, stamping it fresh. Used by mutations to seed the
// detail cache for a just-created or just-updated record.
func (s *Store) Put(resource, k string, v any) {
	s.mu.Lock()
	s.entries[key(resource, k)] = entry{value: v, fetchedAt: time.Now()}
	s.mu.Unlock()
}

// GetOrFill returns a value no older than ttl, calling fill at most once
// across concurrent callers for the same key. On fill failure the error is
// returned and any previously cached value is left in place, so callers can
// keep showing the last resolved state.
func (s *Store) GetOrFill(ctx context.Context, resource, k string, ttl time.Duration, fill func(context.Context) (any, error)) (any, error) {
	ck := key(resource, k)

	s.mu.RLock()
	e, ok := s.entries[ck]
	s.mu.RUnlock()
	if ok && time.Since(e.fetchedAt) < ttl {
		return e.value, nil
	}

	v, err, _ := s.group.Do(ck, func() (any, error) {
		// Re-check: another caller may have filled while we queued.
		s.mu.RLock()
		e, ok := s.entries[ck]
		s.mu.RUnlock()
		if ok && time.Since(e.fetchedAt) < ttl {
			return e.value, nil
		}

		fresh, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		s.Put(resource, k, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate drops every entry of a resource class (e.g. all goal list pages
// after a create). Detail entries of the class go too; mutations that want
// to keep a record warm re-seed it with Put afterwards.
func (s *Store) Invalidate(resource string) {
	prefix := resource + "\x00"
	s.mu.Lock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// Evict removes a single entry.
func (s *Store) Evict(resource, k string) {
	s.mu.Lock()
	delete(s.entries, key(resource, k))
	s.mu.Unlock()
}

// Clear wipes everything. Called on logout so no data of the previous
// identity survives the session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
