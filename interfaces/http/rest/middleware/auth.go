package middleware

import (
	"net/http"
	"strings"

	"ahkneemay/application/commands"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/common"
	pkgerrors "ahkneemay/pkg/errors"

	"go.uber.org/zap"
)

// CookieName is the session cookie carrying the JWT
const CookieName = "auth_token"

// MsgAlreadyLoggedIn is returned when a logged-in user calls an anonymous-only route
const MsgAlreadyLoggedIn = "You are already logged in."

// Authenticate resolves the session user from the auth_token cookie or a
// bearer token. Requests without a valid token continue anonymously.
func Authenticate(tokens *auth.TokenManager, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.Debug("Ignoring invalid session token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithUsername(r.Context(), claims.Username())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests
func RequireUser(errHandler *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.Username(r.Context()) == "" {
				errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(commands.MsgLoginRequired))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnonymous rejects requests that already carry a session
func RequireAnonymous(errHandler *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.Username(r.Context()) != "" {
				errHandler.Handle(w, r, pkgerrors.NewForbiddenError(MsgAlreadyLoggedIn))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per client IP. Limiter failures let the
// request through.
func RateLimit(limiter *auth.IPRateLimiter, limit int, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), common.ClientIP(r))
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				errHandler.Handle(w, r, pkgerrors.NewRateLimitError(limit, "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token first, then the session cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
