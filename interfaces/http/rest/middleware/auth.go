package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"questions-service/pkg/auth"
	pkgerrors "questions-service/pkg/errors"
)

// ErrorResponder writes an error as an HTTP response
type ErrorResponder interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

// RequireRole validates the bearer token and requires one of roles. A nil
// validator means authentication is not configured and every request passes
// as an anonymous caller.
func RequireRole(validator *auth.JWTValidator, responder ErrorResponder, logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				responder.Handle(w, r, pkgerrors.NewUnauthorizedError("Missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", ClientIP(r)),
					zap.String("path", r.URL.Path),
				)
				responder.Handle(w, r, pkgerrors.NewUnauthorizedError(tokenMessage(err)))
				return
			}

			if !hasAnyRole(claims, roles) {
				responder.Handle(w, r, pkgerrors.NewForbiddenError("Insufficient permissions"))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.Subject,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})

			logger.Debug("Request authenticated",
				zap.String("user_id", claims.Subject),
				zap.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects requests once the caller's bucket is empty
func RateLimit(limiter *auth.TokenBucketLimiter, responder ErrorResponder) func(http.Handler) http.Handler {
	rate, burst := limiter.Limit()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), "ip:"+ClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				responder.Handle(w, r, pkgerrors.NewRateLimitError(rate, burst))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the caller address. chi's RealIP has already applied the
// forwarding headers to RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}

func hasAnyRole(claims *auth.Claims, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return true
		}
	}
	return false
}
