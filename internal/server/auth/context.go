package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "sessionClaims"

// WithClaims returns a child context carrying the verified session claims.
func WithClaims(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims attached by the authentication gate.
func ClaimsFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(SessionClaims)
	return claims, ok
}
