package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lexara/pkg/domain"
)

type verifierKey struct{}

// VerifierClaims are the claims expected in a verifier bearer token.
type VerifierClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireVerifier guards credential verification endpoints. The bearer token
// must be HMAC-signed with the configured key and carry role=verifier; its
// subject identifies the acting verifier.
func RequireVerifier(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				unauthorized(w)
				return
			}

			claims := &VerifierClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("verifier token rejected", "error", err, "request_id", GetRequestID(r.Context()))
				unauthorized(w)
				return
			}
			if claims.Role != "verifier" {
				forbidden(w)
				return
			}

			verifierID, err := domain.ParseUserID(claims.Subject)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), verifierKey{}, verifierID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetVerifierID retrieves the authenticated verifier ID from the context.
func GetVerifierID(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(verifierKey{}).(domain.UserID)
	return id, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"forbidden"}`))
}
