package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/roadsafety/backend/libs/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves a bearer token to a principal
type Authenticator interface {
	Authenticate(token string) (auth.Principal, error)
}

// AuthMiddleware rejects requests without a valid access token and stores the principal in the context
func AuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return RoleMiddleware(authenticator, auth.RoleUser)
}

// RoleMiddleware validates the access token and requires the caller's role to be >= requiredRole
func RoleMiddleware(authenticator Authenticator, requiredRole auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required", "unauthenticated")
				return
			}

			principal, err := authenticator.Authenticate(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token", "unauthenticated")
				return
			}

			if principal.Role < requiredRole {
				writeError(w, http.StatusForbidden, "insufficient permissions", "forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuthMiddleware stores the principal when a valid token is present and lets anonymous requests through
func OptionalAuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if principal, err := authenticator.Authenticate(token); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromRequest reads the token from "Authorization: Bearer <token>" or the access_token cookie
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	// Browsers cannot set headers on websocket handshakes
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, principal auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(auth.Principal)
	return principal, ok
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	principal, ok := GetPrincipal(ctx)
	return principal.UserID, ok
}
