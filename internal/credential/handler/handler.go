// Package handler exposes the credential verifier over HTTP. Lifecycle
// transitions (verify, reject, revoke) require a verifier JWT; submission and
// listing are open to the marketplace backend.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lexara/internal/credential/models"
	"lexara/internal/evidence"
	"lexara/internal/platform/middleware"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
	"lexara/pkg/platform/httputil"
)

// Service defines the credential operations the transport needs.
type Service interface {
	Submit(ctx context.Context, in models.SubmitInput, file evidence.File) (models.CredentialID, error)
	Verify(ctx context.Context, id models.CredentialID, verifierID domain.UserID) error
	Reject(ctx context.Context, id models.CredentialID, reason string) error
	Revoke(ctx context.Context, id models.CredentialID, reason string) error
	Get(ctx context.Context, id models.CredentialID) (models.Credential, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]models.Credential, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register wires the open endpoints. Verifier-only endpoints are registered
// separately so the router can wrap them in JWT auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials", h.HandleSubmit)
	r.Get("/credentials/{id}", h.HandleGet)
	r.Get("/users/{userID}/credentials", h.HandleList)
}

// RegisterVerifier wires the endpoints that require a verifier token.
func (h *Handler) RegisterVerifier(r chi.Router) {
	r.Post("/credentials/{id}/verify", h.HandleVerify)
	r.Post("/credentials/{id}/reject", h.HandleReject)
	r.Post("/credentials/{id}/revoke", h.HandleRevoke)
}

// HandleSubmit accepts a new credential claim with inline evidence.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in, file, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	credID, err := h.service.Submit(ctx, in, file)
	if err != nil {
		h.logger.ErrorContext(ctx, "submit credential failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &SubmitResponse{CredentialID: credID.String()})
}

// HandleVerify transitions a credential to verified. The verifier identity
// comes from the JWT, never the request body.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	verifierID, ok := middleware.GetVerifierID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "verifier missing from context despite auth middleware", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	credID := models.CredentialID(chi.URLParam(r, "id"))
	if err := h.service.Verify(ctx, credID, verifierID); err != nil {
		h.logger.ErrorContext(ctx, "verify credential failed", "error", err, "request_id", requestID, "credential_id", credID)
		httputil.WriteError(w, err)
		return
	}

	h.writeCredential(w, r, credID)
}

// HandleReject transitions a pending credential to rejected.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject, "reject credential failed")
}

// HandleRevoke transitions a verified credential to revoked.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Revoke, "revoke credential failed")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, models.CredentialID, string) error, logMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credID := models.CredentialID(chi.URLParam(r, "id"))
	if err := op(ctx, credID, req.Reason); err != nil {
		h.logger.ErrorContext(ctx, logMsg, "error", err, "request_id", requestID, "credential_id", credID)
		httputil.WriteError(w, err)
		return
	}

	h.writeCredential(w, r, credID)
}

// HandleGet returns a single credential.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeCredential(w, r, models.CredentialID(chi.URLParam(r, "id")))
}

// HandleList returns a user's credentials newest-first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	creds, err := h.service.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list credentials failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Credentials: toCredentialResponses(creds)})
}

func (h *Handler) writeCredential(w http.ResponseWriter, r *http.Request, id models.CredentialID) {
	ctx := r.Context()
	cred, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}
