package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/httputil"
)

// TokenValidator defines the interface for validating session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (domain.DID, error)
}

type contextKeyDID struct{}

// GetDID retrieves the authenticated caller DID from the context.
func GetDID(ctx context.Context) domain.DID {
	did, ok := ctx.Value(contextKeyDID{}).(domain.DID)
	if !ok {
		return ""
	}
	return did
}

// RequireAuth validates the Bearer token and stores the caller DID in the context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			did, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyDID{}, did)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
