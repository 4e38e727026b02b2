// Package models defines peer attestations: endorsements from one
// marketplace user about another, weighted by the attester's own reputation.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// Weight bounds. An attester's influence never drops to zero and never
// exceeds double weight, whatever their score.
const (
	MinWeight = 0.1
	MaxWeight = 2.0
)

// ClampWeight bounds a raw weight into [MinWeight, MaxWeight].
func ClampWeight(w float64) float64 {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

// AttestationID identifies a peer attestation.
type AttestationID string

// NewAttestationID generates an attestation ID.
func NewAttestationID() AttestationID {
	return AttestationID("att_" + uuid.NewString())
}

func (id AttestationID) String() string {
	return string(id)
}

// PeerAttestation is an immutable endorsement record.
type PeerAttestation struct {
	ID              AttestationID `json:"id"`
	SubjectID       domain.UserID `json:"subject_user_id"`
	AttesterID      domain.UserID `json:"attester_id"`
	AttestationType string        `json:"attestation_type"`
	Score           float64       `json:"score"`
	Text            string        `json:"text,omitempty"`
	Relationship    string        `json:"professional_relationship,omitempty"`
	YearsKnown      int           `json:"years_known,omitempty"`
	Weight          float64       `json:"weight"`
	AnchorTxID      string        `json:"anchor_tx_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

// AttestInput carries a new attestation request.
type AttestInput struct {
	SubjectID       domain.UserID
	AttesterID      domain.UserID
	AttestationType string
	Score           float64
	Text            string
	Relationship    string
	YearsKnown      int
}

// Validate checks the request. Self-attestation is an authorization error,
// not a validation error: the input is well-formed but the caller may not
// make it.
func (in AttestInput) Validate() error {
	if in.SubjectID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "subject_user_id is required")
	}
	if in.AttesterID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "attester_id is required")
	}
	if strings.TrimSpace(in.AttestationType) == "" {
		return dErrors.New(dErrors.CodeValidation, "attestation_type is required")
	}
	if in.Score < 0 || in.Score > 5 {
		return dErrors.New(dErrors.CodeValidation, "score must be between 0 and 5")
	}
	if in.YearsKnown < 0 {
		return dErrors.New(dErrors.CodeValidation, "years_known must not be negative")
	}
	if in.SubjectID == in.AttesterID {
		return dErrors.New(dErrors.CodeForbidden, "users cannot attest for themselves")
	}
	return nil
}
