package jwtauth

import "context"

type claimsCtxKey struct{}

// WithClaims binds validated claims into a request context. The middleware
// calls this once per authenticated request; handlers read it back through
// the accessors below.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the claims bound by WithClaims, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(Claims)
	return claims, ok
}

// IdentityFromContext returns the identity of the authenticated token, or
// nil when the request carries none.
func IdentityFromContext(ctx context.Context) any {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	return claims.Identity
}

// UserClaimsFromContext returns the custom claims of the authenticated
// access token. Never nil, empty map when absent.
func UserClaimsFromContext(ctx context.Context) map[string]any {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserClaims == nil {
		return map[string]any{}
	}
	return claims.UserClaims
}
