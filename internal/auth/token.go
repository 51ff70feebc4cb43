// Package auth carries the caller's bearer token through request contexts.
package auth

import "context"

type ctxKey struct{}

// WithToken attaches token to ctx. Outbound requests made with a context that
// carries no token are sent without an Authorization header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func Token(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKey{}).(string); ok {
		return s
	}
	return ""
}
