package store

import (
	"context"
	"sync"
	"time"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
)

// InMemoryStore keeps the event log in memory, newest-first per user.
// Safe for concurrent access; does not persist across restarts.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]models.Event
}

// NewInMemoryStore constructs an empty in-memory event store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]models.Event)}
}

// Insert appends an event to the user's log. Events arrive with monotonically
// increasing timestamps, so prepending keeps the slice time-descending.
func (s *InMemoryStore) Insert(_ context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.UserID.String()
	s.events[key] = append([]models.Event{event}, s.events[key]...)
	return nil
}

// ListByUser returns the user's events newest-first, applying the filter.
func (s *InMemoryStore) ListByUser(_ context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, e := range s.events[userID.String()] {
		if !filter.Matches(e) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// LatestTimestamp returns the newest event timestamp for the user.
func (s *InMemoryStore) LatestTimestamp(_ context.Context, userID domain.UserID) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.events[userID.String()]
	if len(log) == 0 {
		return time.Time{}, nil
	}
	return log[0].Timestamp, nil
}
