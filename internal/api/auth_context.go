package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// claimsKey is the context key for the verified access token claims.
const claimsKey ctxKey = "claims"

// GetClaims returns the verified access token claims from context.
// Returns 401 error if user is not authenticated.
func GetClaims(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return claims, nil
}

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (int64, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// setClaims stores the verified claims in context.
func setClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// their claims in context. If no token is present or it is invalid or revoked,
// the request continues without claims; handlers use GetUserID to reject it.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
		})
	}
}
