package api

import (
	"context"

	"github.com/reunionrs/reunion-site-backend/auth"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser adds the signed-in operator to the context
func ctxWithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser retrieves the signed-in operator, if any
func ctxGetUser(ctx context.Context) (*auth.User, bool) {
	user, ok := ctx.Value(userKey).(*auth.User)
	return user, ok && user != nil
}
