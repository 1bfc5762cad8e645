package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	h "communityevents/internal/delivery/http/helpers"
	"communityevents/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from the Authorization header. present is false when the
// header is absent; a non-empty reason describes a malformed header.
func bearerToken(r *http.Request) (token string, present bool, reason string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false, ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", true, "invalid authorization format"
	}
	token = strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", true, "missing token"
	}
	return token, true, ""
}

// AccountLookup loads the account a verified token was issued to.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the user ID in the request context.
// If the token is missing or invalid, or its account was deleted or deactivated, it responds with 401
// and does not call next.
func RequireAuth(verifier domain.TokenVerifier, accounts AccountLookup, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, present, reason := bearerToken(r)
			if !present {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			if reason != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, reason)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			user, err := accounts.GetByID(r.Context(), userID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				logger.DebugContext(r.Context(), "token for missing account", "user_id", userID)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "account not found or inactive")
				return
			case err != nil:
				h.WriteServiceError(w, r, logger, fmt.Errorf("load account: %w", err))
				return
			case !user.Active:
				logger.DebugContext(r.Context(), "token for inactive account", "user_id", userID)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "account not found or inactive")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}

// OptionalAuth is RequireAuth for endpoints that also serve anonymous callers. Requests
// without an Authorization header pass through unauthenticated; a header carrying a bad
// token is still rejected with 401.
func OptionalAuth(verifier domain.TokenVerifier, accounts AccountLookup, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	required := RequireAuth(verifier, accounts, logger)
	return func(next http.HandlerFunc) http.HandlerFunc {
		withAuth := required(next)
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next(w, r)
				return
			}
			withAuth(w, r)
		}
	}
}
