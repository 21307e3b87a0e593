package backend

import "context"

type tokenKey struct{}

// WithToken attaches the caller's Authorization value so outbound backend
// requests are made on the caller's behalf.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
