package devserver

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
)

type Middleware = func(http.HandlerFunc) http.HandlerFunc

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...Middleware) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the base chain of every route, extended with mw
func (s *Server) APIMiddleware(mw ...Middleware) []Middleware {
	chained := []Middleware{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CorsMiddleware,
	}
	return append(chained, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSONError(w, "server_error", "internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// No Origin header = same-origin request, no CORS headers needed
		if origin == "" {
			next(w, r)
			return
		}

		allowedOrigins := s.config.GetAllowedOrigins()
		isAllowed := allowedOrigins.IsAllowedOrigin(origin)
		isWildcard := allowedOrigins.IsAllowedOrigin("*")

		if isAllowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if isWildcard {
			// Don't set Allow-Credentials with wildcard
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			if isAllowed || isWildcard {
				w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			// If not allowed, return 204 with no CORS headers. The browser blocks the actual request.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// RequireAuth is middleware that validates a Bearer access token and stores its claims in the context
func (s *Server) RequireAuth() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "unauthorized", "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, "unauthorized", "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := s.tokens.ParseAccessToken(parts[1])
			if err != nil {
				description := "Invalid token"
				if errors.Is(err, errors.ErrTokenExpired) {
					description = "Token expired"
				}
				writeJSONError(w, "unauthorized", description, http.StatusUnauthorized)
				return
			}

			// A deactivated or deleted user loses access before the token expires
			if _, err := s.data.ActiveUser(claims.Subject); err != nil {
				writeJSONError(w, "unauthorized", "User is not active", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin is middleware that only lets admins through. Chain it after RequireAuth.
func (s *Server) RequireAdmin() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || claims.Role != adminapi.RoleAdmin {
				writeJSONError(w, "forbidden", "Admin access required", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

func claimsFromContext(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AccessClaims)
	return claims
}
