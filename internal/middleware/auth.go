// Package middleware holds the net/http middleware wrapped around the service
// routes: request IDs, access logging and optional bearer authentication.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/auth"
)

type contextKey int

const (
	claimsKey contextKey = iota
	requestIDKey
)

// ClaimsFromContext returns the caller verified by RequireAuth, or nil when
// the route is unauthenticated.
func ClaimsFromContext(ctx context.Context) *auth.TokenClaims {
	v, _ := ctx.Value(claimsKey).(*auth.TokenClaims)
	return v
}

// RequireAuth rejects requests that do not carry a valid
// "Authorization: Bearer <Firebase ID token>" header with 401. Accepted
// requests continue with the verified claims in their context.
func RequireAuth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"request_id": RequestIDFromContext(r.Context()),
				"path":       r.URL.Path,
			})

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				logger.Debug("rejecting request without bearer token")
				writeUnauthorized(w, "missing or malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				logger.WithError(err).Warn("rejecting request with unverifiable token")
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// bearerToken returns the credential of a Bearer authorization header value,
// or "" for any other scheme.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
