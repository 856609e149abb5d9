package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node
// deployments without redis. The clock is injectable so window expiry
// can be tested without sleeping.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// SetClock replaces the time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Take(_ context.Context, key string, cfg Config) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-cfg.Window)

	kept := s.events[key][:0]
	for _, t := range s.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.events[key] = kept

	if len(kept) < cfg.Limit {
		s.events[key] = append(kept, now)
		return Decision{Allowed: true}, nil
	}

	return Decision{RetryAfter: kept[0].Add(cfg.Window).Sub(now)}, nil
}
