// Package store persists credential records. Credentials are never deleted;
// the only mutation is a lifecycle status update.
package store

import (
	"context"

	"lexara/internal/credential/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "credential not found")

// ErrStatusChanged reports a lost compare-and-swap: the stored status no
// longer matches the one the caller read before transitioning.
var ErrStatusChanged = dErrors.New(dErrors.CodeStateConflict, "credential status changed concurrently")

// Store is the credential persistence port.
type Store interface {
	// Create persists a new credential record.
	Create(ctx context.Context, cred models.Credential) error

	// Get returns a credential by ID, or ErrNotFound.
	Get(ctx context.Context, id models.CredentialID) (models.Credential, error)

	// Update replaces a credential's mutable lifecycle fields, guarded by
	// the status the caller read: the write lands only while the stored
	// status still equals from, otherwise ErrStatusChanged. The record must
	// already exist.
	Update(ctx context.Context, cred models.Credential, from models.Status) error

	// ListByUser returns the user's credentials newest-first.
	ListByUser(ctx context.Context, userID domain.UserID) ([]models.Credential, error)
}
