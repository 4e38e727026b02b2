package store

import (
	"context"
	"sort"
	"sync"

	"lexara/internal/credential/models"
	"lexara/pkg/domain"
)

// InMemoryStore keeps credentials in memory. Safe for concurrent access;
// does not persist across restarts.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[models.CredentialID]models.Credential
}

// NewInMemoryStore constructs an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{creds: make(map[models.CredentialID]models.Credential)}
}

func (s *InMemoryStore) Create(_ context.Context, cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.ID] = cred
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id models.CredentialID) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[id]
	if !ok {
		return models.Credential{}, ErrNotFound
	}
	return cred, nil
}

func (s *InMemoryStore) Update(_ context.Context, cred models.Credential, from models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.creds[cred.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Status != from {
		return ErrStatusChanged
	}
	s.creds[cred.ID] = cred
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID domain.UserID) ([]models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Credential
	for _, cred := range s.creds {
		if cred.UserID == userID {
			out = append(out, cred)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
