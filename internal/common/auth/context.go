package auth

import "context"

type ctxKey struct{}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsAdmin(adminRole string) bool {
	return p.Role != "" && p.Role == adminRole
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// UserID is FromContext(ctx).UserID, empty when unauthenticated.
func UserID(ctx context.Context) string {
	p, _ := FromContext(ctx)
	return p.UserID
}
