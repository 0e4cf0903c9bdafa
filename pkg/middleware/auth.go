package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"roadbook/pkg/logger"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller, extracted from the access token.
type Identity struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// SessionChecker reports whether a user still has a live server-side session.
// A valid token with no session means the session expired or was revoked.
type SessionChecker interface {
	Active(ctx context.Context, userID string) (bool, error)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying the given caller identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Authenticate validates the Bearer token and the server-side session, then
// injects the caller identity into the request context.
func Authenticate(secret string, sessions SessionChecker, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, "Missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				writeAuthError(w, "Invalid or expired token")
				return
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, "Invalid token claims")
				return
			}

			identity := Identity{}
			if sub, ok := claims["sub"].(string); ok {
				identity.UserID = sub
			}
			if username, ok := claims["username"].(string); ok {
				identity.Username = username
			}
			if isAdmin, ok := claims["is_admin"].(bool); ok {
				identity.IsAdmin = isAdmin
			}
			if identity.UserID == "" {
				writeAuthError(w, "Invalid token claims")
				return
			}

			active, err := sessions.Active(r.Context(), identity.UserID)
			if err != nil {
				log.Error("Session lookup failed",
					"request_id", RequestID(r.Context()),
					"user_id", identity.UserID,
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
				return
			}
			if !active {
				writeAuthError(w, "Session expired. Log in again")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated callers without the admin flag. Must be
// stacked inside Authenticate.
func RequireAdmin(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, "Missing bearer token")
				return
			}
			if !identity.IsAdmin {
				log.Warn("Admin access denied",
					"request_id", RequestID(r.Context()),
					"user_id", identity.UserID,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"Admin privileges required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
