package http

import (
	"context"
	"net/http"
	"strings"

	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// claimsFrom returns the verified claims the authenticator stored.
func claimsFrom(r *http.Request) (auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(auth.Claims)
	return claims, ok
}

// Authenticator verifies the bearer token, including the revocation list
// check, and stores the claims in the request context.
func Authenticator(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeMessage(w, http.StatusUnauthorized, "missing token")
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == header {
				writeMessage(w, http.StatusUnauthorized, "invalid token format")
				return
			}
			claims, err := tokens.Verify(r.Context(), tokenStr)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is the single capability check for all routes: the caller's
// verified role must be in the allowed set.
func RequireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	set := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "missing token")
				return
			}
			if _, ok := set[claims.Role]; !ok {
				writeMessage(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
