// Package identity resolves the calling user. Authentication itself belongs
// to an external provider; this package only carries and verifies its result.
package identity

import "context"

// Provider resolves the current user id. ok is false for anonymous callers.
type Provider interface {
	UserID(ctx context.Context) (string, bool)
}

type ctxKey struct{}

// WithUserID attaches an authenticated user id to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// ContextProvider reads the id stored by WithUserID.
type ContextProvider struct{}

func (ContextProvider) UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Static always resolves to the same user; empty means anonymous.
type Static string

func (s Static) UserID(context.Context) (string, bool) {
	return string(s), s != ""
}
