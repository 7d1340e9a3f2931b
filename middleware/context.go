package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// WithClaims returns a context carrying validated token claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaimsFromContext returns the claims stored by RequireAuth, or nil.
func GetClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// GetRequestIDFromContext returns the chi request id for the request.
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}
