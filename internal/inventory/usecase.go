package inventory

import (
	"context"

	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
)

type UseCase interface {
	GetProductInventory(ctx context.Context, productID, branchID string, variationID *string) (*model.InventoryRecord, error)
	ListInventory(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryRecord, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
