package store

import (
	"context"
	"sync"

	"lexara/internal/attestation/models"
	"lexara/pkg/domain"
)

// InMemoryStore keeps attestations in memory, newest-first per subject.
type InMemoryStore struct {
	mu   sync.RWMutex
	atts map[string][]models.PeerAttestation
}

// NewInMemoryStore constructs an empty in-memory attestation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{atts: make(map[string][]models.PeerAttestation)}
}

func (s *InMemoryStore) Insert(_ context.Context, att models.PeerAttestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := att.SubjectID.String()
	s.atts[key] = append([]models.PeerAttestation{att}, s.atts[key]...)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID domain.UserID) ([]models.PeerAttestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.atts[subjectID.String()]
	out := make([]models.PeerAttestation, len(log))
	copy(out, log)
	return out, nil
}

func (s *InMemoryStore) CountByPair(_ context.Context, subjectID, attesterID domain.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, att := range s.atts[subjectID.String()] {
		if att.AttesterID == attesterID {
			count++
		}
	}
	return count, nil
}
