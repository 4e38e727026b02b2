// Package handler exposes the read-side trust profile over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lexara/internal/badge"
	"lexara/internal/platform/middleware"
	"lexara/internal/profile"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
	"lexara/pkg/platform/httputil"
)

// Service defines the profile reads the transport needs.
type Service interface {
	Get(ctx context.Context, userID domain.UserID) (profile.Profile, error)
	Badges(ctx context.Context, userID domain.UserID) ([]badge.Badge, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/users/{userID}/reputation", h.HandleReputation)
	r.Get("/users/{userID}/badges", h.HandleBadges)
}

// HandleReputation returns the assembled trust profile. Collaborator
// failures degrade the payload rather than failing the request.
func (h *Handler) HandleReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	p, err := h.service.Get(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get profile failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleBadges returns the user's derived badge set.
func (h *Handler) HandleBadges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	badges, err := h.service.Badges(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "derive badges failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]badge.Badge{"badges": badges})
}
