// Package handler exposes the event store over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lexara/internal/platform/middleware"
	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
	"lexara/pkg/platform/httputil"
)

// Service defines the event store operations the transport needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Append(ctx context.Context, in models.AppendInput) (models.EventID, error)
	Query(ctx context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleAppend)
	r.Get("/users/{userID}/events", h.HandleQuery)
}

// HandleAppend records a new reputation event.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AppendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	eventID, err := h.service.Append(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "append event failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &AppendResponse{EventID: eventID.String()})
}

// HandleQuery lists a user's events newest-first.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.Query(ctx, userID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "query events failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &QueryResponse{Events: toEventResponses(events)})
}
