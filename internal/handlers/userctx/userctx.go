package userctx

import (
	"context"

	"github.com/fluyo/backend/internal/models"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// Create a new context with the authenticated user and the bearer token it came with
func New(ctx context.Context, u models.UserInfo, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, tokenKey, token)
}

// Extract the user from the context
func FromContext(ctx context.Context) (models.UserInfo, bool) {
	u, ok := ctx.Value(userKey).(models.UserInfo)
	return u, ok
}

// Extract the bearer token from the context
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
