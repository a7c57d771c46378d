package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/branchly/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	query := `SELECT * FROM branches WHERE is_active = true ORDER BY name`
	err := r.DB.SelectContext(ctx, &branches, query)
	return branches, err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Branch, error) {
	var b model.Branch
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM branches WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
