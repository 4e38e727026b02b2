package handler

import (
	"strings"
	"time"

	"lexara/internal/credential/models"
	"lexara/internal/evidence"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// EvidenceUpload is an inline evidence document; Data is base64 on the wire.
type EvidenceUpload struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type SubmitRequest struct {
	UserID           string         `json:"user_id"`
	CredentialType   string         `json:"credential_type"`
	IssuingAuthority string         `json:"issuing_authority"`
	CredentialName   string         `json:"credential_name"`
	Jurisdiction     string         `json:"jurisdiction,omitempty"`
	IssuedDate       *time.Time     `json:"issued_date,omitempty"`
	ExpiryDate       *time.Time     `json:"expiry_date,omitempty"`
	Evidence         EvidenceUpload `json:"evidence"`
}

func (r *SubmitRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.CredentialType = strings.TrimSpace(r.CredentialType)
	r.IssuingAuthority = strings.TrimSpace(r.IssuingAuthority)
	r.CredentialName = strings.TrimSpace(r.CredentialName)
	r.Jurisdiction = strings.TrimSpace(r.Jurisdiction)
}

func (r *SubmitRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if len(r.Evidence.Data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "evidence document is required")
	}
	return nil
}

func (r *SubmitRequest) ToInput() (models.SubmitInput, evidence.File, error) {
	userID, err := domain.ParseUserID(r.UserID)
	if err != nil {
		return models.SubmitInput{}, evidence.File{}, dErrors.New(dErrors.CodeBadRequest, "invalid user id")
	}
	in := models.SubmitInput{
		UserID:           userID,
		CredentialType:   r.CredentialType,
		IssuingAuthority: r.IssuingAuthority,
		CredentialName:   r.CredentialName,
		Jurisdiction:     r.Jurisdiction,
		IssuedDate:       r.IssuedDate,
		ExpiryDate:       r.ExpiryDate,
	}
	file := evidence.File{
		Name:        r.Evidence.Name,
		ContentType: r.Evidence.ContentType,
		Data:        r.Evidence.Data,
	}
	return in, file, nil
}

// TransitionRequest carries an optional reason for reject and revoke.
type TransitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (r *TransitionRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}
