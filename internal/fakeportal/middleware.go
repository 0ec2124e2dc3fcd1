package fakeportal

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-edoctorat/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated account
	ContextKeyUser ContextKey = "user"
	// ContextKeyToken stores the raw bearer token
	ContextKeyToken ContextKey = "token"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is applied to every route.
func (p *Portal) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		p.LoggingMiddleware,
		p.RecoverMiddleware,
	}
	return append(chained, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (p *Portal) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Debug().
			Str("request_id", r.Header.Get("X-Request-ID")).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("fakeportal")
	}
}

func (p *Portal) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
			}
		}()
		next(w, r)
	}
}

// RequireAuth validates the Bearer access token and injects the account.
func (p *Portal) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Missing Authorization header")
				return
			}
			if p.isRevoked(raw) {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Token has been revoked")
				return
			}

			subject, tokenType, err := p.issuer.Verify(raw)
			if err != nil || tokenType != "access" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
				return
			}
			user, err := p.users.GetByID(subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Unknown user")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyToken, raw)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole rejects accounts that hold none of the roles. Directors pass
// professor checks through the guard's role inheritance.
func (p *Portal) RequireRole(required ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
				return
			}
			for _, role := range required {
				if p.guard.HasRole(user.Roles, role) {
					next(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Forbidden", "Access denied")
		}
	}
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func currentUser(r *http.Request) *users.User {
	u, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return u
}
