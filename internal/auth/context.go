package auth

import (
	"context"

	"github.com/branchly/inventory-service/internal/model"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// UserContext is the resolved caller identity attached to each request by
// the auth middleware.
type UserContext struct {
	UserID    string
	Name      string
	Role      string
	BranchIDs []string
}

func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUser(ctx context.Context) *UserContext {
	if user, ok := ctx.Value(userContextKey).(*UserContext); ok {
		return user
	}
	return nil
}

// HasBranchAccess reports whether the user may act on the given branch.
// Owners and admins have access to every branch.
func HasBranchAccess(user *UserContext, branchID string) bool {
	if user == nil {
		return false
	}
	if user.Role == model.RoleOwner || user.Role == model.RoleAdmin {
		return true
	}
	for _, id := range user.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// CanTransfer checks the branch permissions for a transfer: source access
// is always required, destination access is waived for employees (they
// ship stock to branches they cannot otherwise manage).
func CanTransfer(user *UserContext, fromBranchID, toBranchID string) bool {
	if !HasBranchAccess(user, fromBranchID) {
		return false
	}
	if user.Role == model.RoleEmployee {
		return true
	}
	return HasBranchAccess(user, toBranchID)
}
