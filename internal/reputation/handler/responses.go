package handler

import (
	"time"

	"lexara/internal/reputation/models"
)

type AppendResponse struct {
	EventID string `json:"event_id"`
}

type EventResponse struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	EventType    string            `json:"event_type"`
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

type QueryResponse struct {
	Events []EventResponse `json:"events"`
}

func toEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = EventResponse{
			ID:           e.ID.String(),
			UserID:       e.UserID.String(),
			EventType:    string(e.Type),
			GigID:        e.GigID,
			ReviewerID:   e.ReviewerID,
			ScoreChange:  e.ScoreChange,
			Rating:       e.Rating,
			ReviewText:   e.ReviewText,
			EvidenceHash: e.EvidenceHash,
			AnchorTxID:   e.AnchorTxID,
			Timestamp:    e.Timestamp,
			Metadata:     e.Metadata,
		}
	}
	return out
}
