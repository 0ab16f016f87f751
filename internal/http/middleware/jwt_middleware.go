package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/pkg/auth"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type ctxKey string

const (
	ctxActor   ctxKey = "actor"
	ctxSession ctxKey = "session_id"
)

// SessionResolver maps a session id to its live user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
}

// RequireSession accepts a bearer JWT only while its session is still stored
// and its user active. A valid signature alone is not enough: logout and
// role changes revoke the session.
func RequireSession(secret string, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "invalid authorization header")
				return
			}
			claims, err := auth.Parse(strings.TrimPrefix(authz, "Bearer "), secret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid authorization token", response.CodeUnauthorized)
				return
			}
			user, err := sessions.CurrentUser(r.Context(), claims.SessionID)
			if err != nil {
				response.FromError(w, r, err)
				return
			}

			actor := domain.Actor{Username: user.Username, Role: user.Role}
			ctx := context.WithValue(r.Context(), ctxActor, actor)
			ctx = context.WithValue(ctx, ctxSession, claims.SessionID)
			ctx = context.WithValue(ctx, logger.UsernameKey, user.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireArea lets through callers whose role may enter area.
func RequireArea(area domain.Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r)
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			if !actor.Role.CanAccess(area) {
				response.Forbidden(w, "role "+string(actor.Role)+" cannot access "+string(area)+" routes")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorFrom(r *http.Request) (domain.Actor, bool) {
	a, ok := r.Context().Value(ctxActor).(domain.Actor)
	return a, ok
}

func SessionIDFrom(r *http.Request) string {
	s, _ := r.Context().Value(ctxSession).(string)
	return s
}
