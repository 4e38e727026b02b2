// Package store persists peer attestations. Records are insert-only.
package store

import (
	"context"

	"lexara/internal/attestation/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "attestation not found")

// Store is the attestation persistence port.
type Store interface {
	// Insert persists a new attestation. The caller has already anchored it.
	Insert(ctx context.Context, att models.PeerAttestation) error

	// ListBySubject returns attestations made about the user, newest-first.
	ListBySubject(ctx context.Context, subjectID domain.UserID) ([]models.PeerAttestation, error)

	// CountByPair returns how many attestations the attester has already made
	// about the subject. Used to cap repeat endorsements per pair.
	CountByPair(ctx context.Context, subjectID, attesterID domain.UserID) (int, error)
}
