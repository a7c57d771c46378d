package auth

import "context"

// UserResolver loads the caller identity the middleware attaches to each
// request: user row plus the branch grants.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*UserContext, error)
}
