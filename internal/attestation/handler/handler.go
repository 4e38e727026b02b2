// Package handler exposes the attestation engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lexara/internal/attestation/models"
	"lexara/internal/platform/middleware"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
	"lexara/pkg/platform/httputil"
)

// Service defines the attestation operations the transport needs.
type Service interface {
	Attest(ctx context.Context, in models.AttestInput) (models.AttestationID, error)
	ListBySubject(ctx context.Context, subjectID domain.UserID) ([]models.PeerAttestation, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/attestations", h.HandleAttest)
	r.Get("/users/{userID}/attestations", h.HandleList)
}

type AttestRequest struct {
	SubjectUserID   string  `json:"subject_user_id"`
	AttesterID      string  `json:"attester_id"`
	AttestationType string  `json:"attestation_type"`
	Score           float64 `json:"score"`
	Text            string  `json:"text,omitempty"`
	Relationship    string  `json:"professional_relationship,omitempty"`
	YearsKnown      int     `json:"years_known,omitempty"`
}

func (r *AttestRequest) Normalize() {
	r.SubjectUserID = strings.TrimSpace(r.SubjectUserID)
	r.AttesterID = strings.TrimSpace(r.AttesterID)
	r.AttestationType = strings.TrimSpace(r.AttestationType)
}

func (r *AttestRequest) Validate() error {
	if r.SubjectUserID == "" {
		return dErrors.New(dErrors.CodeValidation, "subject_user_id is required")
	}
	if r.AttesterID == "" {
		return dErrors.New(dErrors.CodeValidation, "attester_id is required")
	}
	return nil
}

type AttestResponse struct {
	AttestationID string `json:"attestation_id"`
}

type AttestationResponse struct {
	ID              string  `json:"id"`
	SubjectUserID   string  `json:"subject_user_id"`
	AttesterID      string  `json:"attester_id"`
	AttestationType string  `json:"attestation_type"`
	Score           float64 `json:"score"`
	Text            string  `json:"text,omitempty"`
	Relationship    string  `json:"professional_relationship,omitempty"`
	YearsKnown      int     `json:"years_known,omitempty"`
	Weight          float64 `json:"weight"`
	AnchorTxID      string  `json:"anchor_tx_id"`
}

type ListResponse struct {
	Attestations []AttestationResponse `json:"attestations"`
}

// HandleAttest records a peer attestation.
func (h *Handler) HandleAttest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AttestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subjectID, err := domain.ParseUserID(req.SubjectUserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid subject user id"))
		return
	}
	attesterID, err := domain.ParseUserID(req.AttesterID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid attester id"))
		return
	}

	attID, err := h.service.Attest(ctx, models.AttestInput{
		SubjectID:       subjectID,
		AttesterID:      attesterID,
		AttestationType: req.AttestationType,
		Score:           req.Score,
		Text:            req.Text,
		Relationship:    req.Relationship,
		YearsKnown:      req.YearsKnown,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "attest failed", "error", err, "request_id", requestID, "subject_id", subjectID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &AttestResponse{AttestationID: attID.String()})
}

// HandleList returns attestations made about a user, newest-first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	subjectID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	atts, err := h.service.ListBySubject(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list attestations failed", "error", err, "request_id", requestID, "subject_id", subjectID)
		httputil.WriteError(w, err)
		return
	}

	out := make([]AttestationResponse, len(atts))
	for i, att := range atts {
		out[i] = AttestationResponse{
			ID:              att.ID.String(),
			SubjectUserID:   att.SubjectID.String(),
			AttesterID:      att.AttesterID.String(),
			AttestationType: att.AttestationType,
			Score:           att.Score,
			Text:            att.Text,
			Relationship:    att.Relationship,
			YearsKnown:      att.YearsKnown,
			Weight:          att.Weight,
			AnchorTxID:      att.AnchorTxID,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Attestations: out})
}
