package inventory

import (
	"context"

	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
)

type Repository interface {
	// Inventory records
	GetRecord(ctx context.Context, productID, branchID string, variationID *string) (*model.InventoryRecord, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)

	// Movements / audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Atomic stock mutation: upsert the record and append its movement in
	// one transaction.
	AdjustStockWithMovement(ctx context.Context, inv *model.InventoryRecord, movement *model.StockMovement) error
}
