package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

// SessionSource is the read side of the console session the guard checks.
type SessionSource interface {
	CurrentIdentity() *domain.Identity
}

type contextKey string

const IdentityKey contextKey = "identity"

// IdentityFrom returns the identity RequireSession attached to the request.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return id, ok && id != nil
}

type SessionGuard struct {
	session SessionSource
	logger  zerolog.Logger
}

func NewSessionGuard(session SessionSource, logger zerolog.Logger) *SessionGuard {
	return &SessionGuard{session: session, logger: logger}
}

// RequireSession rejects requests when nobody is logged in (401) or when the
// logged-in role is not among roles (403). No roles means any role.
func (g *SessionGuard) RequireSession(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := g.session.CurrentIdentity()
			if identity == nil {
				g.logger.Debug().Str("path", r.URL.Path).Msg("No active session")
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if len(roles) > 0 && !hasRole(identity.Role, roles) {
				g.logger.Info().
					Str("user_id", identity.ID).
					Str("role", string(identity.Role)).
					Str("path", r.URL.Path).
					Msg("Role not permitted")
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
