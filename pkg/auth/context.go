package auth

import "context"

// uidKey is the unexported key used to store the verified caller identity.
type uidKey struct{}

// WithUID stores the verified user ID in ctx.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey{}, uid)
}

// UIDFromCtx extracts the verified user ID from ctx, or "" when the request
// did not pass authentication.
func UIDFromCtx(ctx context.Context) string {
	if uid, ok := ctx.Value(uidKey{}).(string); ok {
		return uid
	}
	return ""
}
