// Package httptransport wires the public HTTP surface: middleware stack,
// per-context handlers, health probes, and the metrics endpoint. Handlers
// stay thin; business logic lives in the service packages.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attestationhandler "lexara/internal/attestation/handler"
	credentialhandler "lexara/internal/credential/handler"
	"lexara/internal/platform/health"
	"lexara/internal/platform/middleware"
	profilehandler "lexara/internal/profile/handler"
	reputationhandler "lexara/internal/reputation/handler"
)

// Handlers groups the per-context HTTP handlers the router mounts.
type Handlers struct {
	Events       *reputationhandler.Handler
	Credentials  *credentialhandler.Handler
	Attestations *attestationhandler.Handler
	Profile      *profilehandler.Handler
	Health       *health.Handler
}

// NewRouter assembles the full route table. jwtSigningKey guards the
// verifier-only credential transitions; an empty key leaves those routes
// unauthenticated, which is only acceptable in development.
func NewRouter(h Handlers, jwtSigningKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		h.Events.Register(r)
		h.Credentials.Register(r)
		h.Attestations.Register(r)
		h.Profile.Register(r)

		r.Group(func(r chi.Router) {
			if jwtSigningKey != "" {
				r.Use(middleware.RequireVerifier(jwtSigningKey, logger))
			}
			h.Credentials.RegisterVerifier(r)
		})
	})

	return r
}
