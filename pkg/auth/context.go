package auth

import "context"

type contextKey string

const usernameKey contextKey = "username"

// WithUsername stores the session user in ctx
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns the session user, or "" for anonymous requests
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
