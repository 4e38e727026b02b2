package handler

import (
	"time"

	"lexara/internal/credential/models"
)

type SubmitResponse struct {
	CredentialID string `json:"credential_id"`
}

type CredentialResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CredentialType   string     `json:"credential_type"`
	IssuingAuthority string     `json:"issuing_authority"`
	CredentialName   string     `json:"credential_name"`
	Jurisdiction     string     `json:"jurisdiction,omitempty"`
	Status           string     `json:"verification_status"`
	AnchorTxID       string     `json:"anchor_tx_id,omitempty"`
	EvidenceCID      string     `json:"evidence_cid,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	IssuedDate       *time.Time `json:"issued_date,omitempty"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at"`
}

type ListResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

func toCredentialResponse(c models.Credential) CredentialResponse {
	return CredentialResponse{
		ID:               c.ID.String(),
		UserID:           c.UserID.String(),
		CredentialType:   c.CredentialType,
		IssuingAuthority: c.IssuingAuthority,
		CredentialName:   c.CredentialName,
		Jurisdiction:     c.Jurisdiction,
		Status:           string(c.Status),
		AnchorTxID:       c.AnchorTxID,
		EvidenceCID:      c.EvidenceCID,
		RejectionReason:  c.RejectionReason,
		IssuedDate:       c.IssuedDate,
		ExpiryDate:       c.ExpiryDate,
		SubmittedAt:      c.SubmittedAt,
	}
}

func toCredentialResponses(creds []models.Credential) []CredentialResponse {
	out := make([]CredentialResponse, len(creds))
	for i, c := range creds {
		out[i] = toCredentialResponse(c)
	}
	return out
}
