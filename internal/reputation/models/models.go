// Package models defines the reputation event log types. Events are the
// single source of truth for a user's standing: immutable, append-only, and
// anchored on chain before they are persisted.
package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// EventType captures the supported reputation event types.
type EventType string

const (
	EventGigCompleted       EventType = "gig_completed"
	EventLegalCaseCompleted EventType = "legal_case_completed"
	EventPropertyApproved   EventType = "property_approved"
	EventDisputeResolved    EventType = "dispute_resolved"
	EventCredentialVerified EventType = "credential_verified"
	EventPeerAttestation    EventType = "peer_attestation_received"
	EventReviewReceived     EventType = "review_received"
)

// baseScore maps each event type to its base score contribution. The actual
// score change scales with the rating: base * rating / 5, rounded to cents.
var baseScore = map[EventType]float64{
	EventGigCompleted:       3.0,
	EventLegalCaseCompleted: 5.0,
	EventPropertyApproved:   4.0,
	EventDisputeResolved:    6.0,
	EventCredentialVerified: 2.0,
	EventPeerAttestation:    1.5,
	EventReviewReceived:     2.5,
}

// ParseEventType validates an event type string.
func ParseEventType(value string) (EventType, error) {
	t := EventType(strings.TrimSpace(value))
	if _, ok := baseScore[t]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown event type")
	}
	return t, nil
}

// Known reports whether the event type is a supported variant.
func (t EventType) Known() bool {
	_, ok := baseScore[t]
	return ok
}

// IsCompletion reports whether the event counts toward total completions.
func (t EventType) IsCompletion() bool {
	switch t {
	case EventGigCompleted, EventLegalCaseCompleted, EventPropertyApproved:
		return true
	}
	return false
}

// ScoreChange computes the score contribution for an event of this type.
// Weight only applies to peer attestations, where the attester's standing
// scales the contribution: rating * weight * 0.5. All other types use the
// fixed base table scaled by the rating. Results are rounded to 2 decimals.
func (t EventType) ScoreChange(rating, weight float64) float64 {
	var raw float64
	if t == EventPeerAttestation {
		raw = rating * weight * 0.5
	} else {
		raw = baseScore[t] * rating / 5.0
	}
	return math.Round(raw*100) / 100
}

const eventIDPrefix = "evt_"

// EventID is the prefixed identifier for reputation events.
type EventID string

// NewEventID generates a new event ID with a stable prefix.
func NewEventID() EventID {
	return EventID(eventIDPrefix + uuid.NewString())
}

// String returns the event ID as a string.
func (id EventID) String() string {
	return string(id)
}

// Event is an immutable record of a fact affecting a user's standing.
// Once anchored and persisted it is never mutated or deleted.
type Event struct {
	ID           EventID           `json:"id"`
	UserID       domain.UserID     `json:"user_id"`
	Type         EventType         `json:"event_type"`
	GigID        string            `json:"gig_id,omitempty"`
	ReviewerID   string            `json:"reviewer_id,omitempty"`
	ScoreChange  float64           `json:"score_change"`
	Rating       float64           `json:"rating"`
	ReviewText   string            `json:"review_text,omitempty"`
	EvidenceHash string            `json:"evidence_hash,omitempty"`
	AnchorTxID   string            `json:"anchor_tx_id"`
	Timestamp    time.Time         `json:"timestamp"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// HasRating reports whether the event carries a meaningful rating.
// Zero ratings mean "unrated" and are excluded from rating averages.
func (e Event) HasRating() bool {
	return e.Rating > 0
}

// AppendInput is the caller-supplied part of a new event. The score change,
// ID, anchor transaction, and timestamp are computed by the event store;
// callers cannot supply them.
type AppendInput struct {
	UserID       domain.UserID
	Type         EventType
	GigID        string
	ReviewerID   string
	Rating       float64
	ReviewText   string
	EvidenceHash string
	Metadata     map[string]string

	// AttestationWeight is set only by the attestation engine for
	// peer_attestation_received events; it must lie in [0.1, 2.0].
	AttestationWeight float64
}

// Validate checks the input against the event invariants.
func (in AppendInput) Validate() error {
	if in.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if !in.Type.Known() {
		return dErrors.New(dErrors.CodeValidation, "unknown event type")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return dErrors.New(dErrors.CodeValidation, "rating must be between 0 and 5")
	}
	if in.Type == EventPeerAttestation {
		if in.AttestationWeight < 0.1 || in.AttestationWeight > 2.0 {
			return dErrors.New(dErrors.CodeValidation, "attestation weight must be between 0.1 and 2.0")
		}
	} else if in.AttestationWeight != 0 {
		return dErrors.New(dErrors.CodeValidation, "attestation weight is only valid for peer attestations")
	}
	return nil
}

// Filter narrows event queries. Zero values mean "no constraint".
type Filter struct {
	Types []EventType
	Since time.Time
	Until time.Time
	Limit int
}

// Matches reports whether the event satisfies the filter.
func (f Filter) Matches(e Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}
