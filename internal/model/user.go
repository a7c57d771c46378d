package model

import "time"

const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserBranch grants a user access to a branch. Owners and admins bypass
// the grant table entirely.
type UserBranch struct {
	UserID   string `db:"user_id" json:"user_id"`
	BranchID string `db:"branch_id" json:"branch_id"`
}
