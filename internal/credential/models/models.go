// Package models defines professional credential records and their
// verification lifecycle. A credential is a claimed qualification (bar
// license, notary commission, identity document) that moves through a strict
// state machine and is never physically deleted.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// Status is the verification state of a credential.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// transitions lists the allowed next states per current state. Rejected and
// expired are terminal: renewal requires a fresh submission.
var transitions = map[Status][]Status{
	StatusPending:  {StatusVerified, StatusRejected},
	StatusVerified: {StatusExpired, StatusRevoked},
	StatusRejected: {},
	StatusExpired:  {},
	StatusRevoked:  {},
}

// CanTransition reports whether the credential may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Credential types with dedicated verification badges.
const (
	TypeIdentity     = "identity"
	TypeProfessional = "professional"
	TypeBarLicense   = "bar_license"
)

// CredentialID identifies a credential record.
type CredentialID string

// NewCredentialID generates a credential ID.
func NewCredentialID() CredentialID {
	return CredentialID("cred_" + uuid.NewString())
}

func (id CredentialID) String() string {
	return string(id)
}

// Credential is a claimed professional qualification and its verification
// state. Records are append-only from the outside: only the verifier service
// mutates them, and only via lifecycle transitions.
type Credential struct {
	ID               CredentialID  `json:"id"`
	UserID           domain.UserID `json:"user_id"`
	CredentialType   string        `json:"credential_type"`
	IssuingAuthority string        `json:"issuing_authority"`
	CredentialName   string        `json:"credential_name"`
	Jurisdiction     string        `json:"jurisdiction"`
	Status           Status        `json:"verification_status"`
	AnchorTxID       string        `json:"anchor_tx_id,omitempty"`
	EvidenceCID      string        `json:"evidence_cid,omitempty"`
	VerifierID       domain.UserID `json:"verifier_id,omitzero"`
	RejectionReason  string        `json:"rejection_reason,omitempty"`
	IssuedDate       *time.Time    `json:"issued_date,omitempty"`
	ExpiryDate       *time.Time    `json:"expiry_date,omitempty"`
	SubmittedAt      time.Time     `json:"submitted_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// SubmitInput carries a new credential claim.
type SubmitInput struct {
	UserID           domain.UserID
	CredentialType   string
	IssuingAuthority string
	CredentialName   string
	Jurisdiction     string
	IssuedDate       *time.Time
	ExpiryDate       *time.Time
}

// Validate checks the submission for required fields.
func (in SubmitInput) Validate() error {
	if in.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if strings.TrimSpace(in.CredentialType) == "" {
		return dErrors.New(dErrors.CodeValidation, "credential_type is required")
	}
	if strings.TrimSpace(in.CredentialName) == "" {
		return dErrors.New(dErrors.CodeValidation, "credential_name is required")
	}
	if strings.TrimSpace(in.IssuingAuthority) == "" {
		return dErrors.New(dErrors.CodeValidation, "issuing_authority is required")
	}
	if in.IssuedDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.IssuedDate) {
		return dErrors.New(dErrors.CodeValidation, "expiry_date precedes issued_date")
	}
	return nil
}
