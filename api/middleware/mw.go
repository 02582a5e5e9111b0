package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

type contextKey string
type tokenKey string

const ClaimsKey contextKey = "claims"
const TokenKey tokenKey = "token"

// SessionCookieName is the cookie carrying the signed session token for
// browser clients. API clients send it as a bearer token instead.
const SessionCookieName = "portal_session"

// SessionStore looks up the server-side session behind a token.
type SessionStore interface {
	GetSession(id uuid.UUID) (*models.Session, error)
}

// JWTMiddleware verifies the session token and adds its claims to the
// request context. The token is read from the Authorization header or, for
// browser clients, the session cookie. The backing session row must still be
// active, so a revoked session is rejected even before the token expires.
func JWTMiddleware(secret []byte, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logger := log.Ctx(r.Context()).With().
					Str("handler", "JWTMiddleware").Logger()

				token := bearerToken(r)
				if token == "" {
					logger.Debug().Msg("session token missing")
					http.Error(w, "authorization required", http.StatusUnauthorized)
					return
				}

				claims, err := authn.ParseClaims(token, secret)
				if err != nil {
					logger.Error().Err(err).Msg("invalid session token")
					http.Error(w, "invalid session token", http.StatusUnauthorized)
					return
				}

				session, err := sessions.GetSession(claims.SessionID)
				if err != nil {
					logger.Warn().Err(err).Msg("session lookup failed")
					http.Error(w, "invalid session token", http.StatusUnauthorized)
					return
				}
				if !session.IsActive() {
					logger.Debug().Str("username", claims.Username).Msg("session no longer active")
					http.Error(w, "session is no longer active", http.StatusUnauthorized)
					return
				}

				// Add the token and claims to the context
				ctx := context.WithValue(r.Context(), TokenKey, token)
				ctx = context.WithValue(ctx, ClaimsKey, claims)

				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != authHeader {
			return token
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
