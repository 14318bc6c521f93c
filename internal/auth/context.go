package auth

import "context"

type identityContextKey struct{}

// WithIdentity stores verified claims on the context for downstream
// handlers. Only the gateway middleware may call this, and only with
// claims produced by TokenCodec.Verify.
func WithIdentity(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, identityContextKey{}, claims)
}

// IdentityFromContext retrieves the verified claims from the context.
func IdentityFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(identityContextKey{}).(*Claims)
	return claims, ok && claims != nil
}
