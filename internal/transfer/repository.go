package transfer

import (
	"context"

	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/transfer/dto"
)

type Repository interface {
	// Availability reads used by the pre-transaction validation phase.
	// RecordQuantity is the exact (product, branch, variation) row, zero
	// when no row exists. TotalQuantity sums every row for the product at
	// the branch, variation rows included.
	RecordQuantity(ctx context.Context, productID, branchID string, variationID *string) (int, error)
	TotalQuantity(ctx context.Context, productID, branchID string) (int, error)

	// ExecuteTransfer runs the whole commit phase in one transaction:
	// transfer header, items, guarded source decrements, destination
	// upserts and both audit movements per item. Any error leaves the
	// database untouched.
	ExecuteTransfer(ctx context.Context, t *model.Transfer, items []model.TransferItem) error

	// Hydrated read projections
	GetByID(ctx context.Context, id string) (*dto.TransferDetail, error)
	FindAll(ctx context.Context, filters *dto.TransferFilters) ([]dto.TransferDetail, error)
}
