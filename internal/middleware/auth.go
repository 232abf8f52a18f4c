package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/model"
)

// TokenVerifier validates a bearer token and returns the embedded identity.
type TokenVerifier interface {
	Verify(tokenString string) (model.Identity, error)
}

// GateConfig holds configuration for the auth gate.
type GateConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	// Allowed is the set of exact request paths exempt from authentication
	// (registration, login, health checks, dev reset).
	Allowed map[string]bool
}

// Gate returns the request gate middleware. It runs before every route:
// allow-listed paths pass through untouched, every other request must carry
// a verifiable bearer token, whose identity is attached to the request
// context. Failed requests are short-circuited before any handler runs.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Allowed[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, reason := extractBearerToken(r.Header.Get("Authorization"))
			if reason != "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			identity, err := cfg.Tokens.Verify(tokenString)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and a failure reason (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing_header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid_header_format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty_token"
	}
	return token, ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing bearer token"}}`))
}
