package identity

import "context"

// contextKey is unexported to prevent collisions with keys from other packages.
type contextKey struct{}

// ContextWithUser returns a child context carrying the resolved request identity.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext extracts the resolved request identity, if any.
// Handlers behind the request authorizer can rely on ok being true.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}
