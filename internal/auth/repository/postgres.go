package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/auth"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGUserResolver struct {
	DB *sqlx.DB
}

func NewPGUserResolver(db *sqlx.DB) *PGUserResolver {
	return &PGUserResolver{DB: db}
}

func (r *PGUserResolver) ResolveUser(ctx context.Context, userID string) (*auth.UserContext, error) {
	var user model.User
	err := r.DB.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1 AND is_active = true LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", userID)
		}
		return nil, err
	}

	var branchIDs []string
	err = r.DB.SelectContext(ctx, &branchIDs, `SELECT branch_id FROM user_branches WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	return &auth.UserContext{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		BranchIDs: branchIDs,
	}, nil
}
