// Package store persists the append-only reputation event log.
package store

import (
	"context"
	"time"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "event not found")

// Store is the event log persistence port. Implementations never update or
// delete rows; Insert is the only mutation.
type Store interface {
	// Insert appends an event. The caller has already anchored it and
	// assigned its ID and timestamp.
	Insert(ctx context.Context, event models.Event) error

	// ListByUser returns the user's events newest-first, applying the filter.
	ListByUser(ctx context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error)

	// LatestTimestamp returns the newest event timestamp for the user, or the
	// zero time if the user has no events. Used to keep per-user timestamps
	// strictly monotonic.
	LatestTimestamp(ctx context.Context, userID domain.UserID) (time.Time, error)
}
