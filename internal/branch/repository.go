package branch

import (
	"context"

	"github.com/branchly/inventory-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.Branch, error)
	FindByID(ctx context.Context, id string) (*model.Branch, error)
}
