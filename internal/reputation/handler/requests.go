package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// AppendRequest is the wire form of a new event. The score change, anchor
// transaction, and timestamp are never accepted from the caller.
type AppendRequest struct {
	UserID       string            `json:"user_id"`
	EventType    string            `json:"event_type"`
	GigID        string            `json:"gig_id,omitempty"`
	ReviewerID   string            `json:"reviewer_id,omitempty"`
	Rating       float64           `json:"rating"`
	ReviewText   string            `json:"review_text,omitempty"`
	EvidenceHash string            `json:"evidence_hash,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (r *AppendRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.EventType = strings.TrimSpace(r.EventType)
}

func (r *AppendRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if r.EventType == "" {
		return dErrors.New(dErrors.CodeValidation, "event_type is required")
	}
	return nil
}

// ToInput converts the request to a service input. Peer attestation events
// cannot be appended over this endpoint: their weight is computed by the
// attestation engine, so they must go through POST /attestations.
func (r *AppendRequest) ToInput() (models.AppendInput, error) {
	userID, err := domain.ParseUserID(r.UserID)
	if err != nil {
		return models.AppendInput{}, dErrors.New(dErrors.CodeBadRequest, "invalid user id")
	}
	eventType, err := models.ParseEventType(r.EventType)
	if err != nil {
		return models.AppendInput{}, err
	}
	if eventType == models.EventPeerAttestation {
		return models.AppendInput{}, dErrors.New(dErrors.CodeForbidden, "peer attestations must be submitted via /attestations")
	}
	return models.AppendInput{
		UserID:       userID,
		Type:         eventType,
		GigID:        r.GigID,
		ReviewerID:   r.ReviewerID,
		Rating:       r.Rating,
		ReviewText:   r.ReviewText,
		EvidenceHash: r.EvidenceHash,
		Metadata:     r.Metadata,
	}, nil
}

// filterFromQuery parses ?type=&since=&until=&limit= into an event filter.
func filterFromQuery(r *http.Request) (models.Filter, error) {
	var filter models.Filter

	for _, raw := range r.URL.Query()["type"] {
		t, err := models.ParseEventType(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Types = append(filter.Types, t)
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "since must be RFC 3339")
		}
		filter.Since = ts
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "until must be RFC 3339")
		}
		filter.Until = ts
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
