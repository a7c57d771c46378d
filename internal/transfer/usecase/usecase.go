package usecase

import (
	"context"
	"time"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/platform/cache"
	"github.com/branchly/inventory-service/internal/transfer"
	"github.com/branchly/inventory-service/internal/transfer/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type transferUseCase struct {
	repo   transfer.Repository
	cache  *cache.RedisClient
	logger *zap.Logger
}

// NewTransferUseCase builds the transfer engine. cache may be nil; it is
// only used to drop stale inventory listings after a commit.
func NewTransferUseCase(repo transfer.Repository, cache *cache.RedisClient, log *zap.Logger) transfer.UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &transferUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// CreateTransfer moves stock between two branches instantly and atomically.
// Validation and the availability pre-check run before any transaction;
// the commit phase re-checks availability through the guarded decrement,
// so a concurrent transfer can never drive a row negative.
func (uc *transferUseCase) CreateTransfer(ctx context.Context, input *dto.CreateTransferInput) (*dto.TransferDetail, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Availability phase. Abort the whole request on the first shortfall,
	// before any mutation.
	for _, item := range input.Items {
		if item.VariationID != nil && *item.VariationID != "" {
			available, err := uc.repo.RecordQuantity(ctx, item.ProductID, input.FromBranchID, item.VariationID)
			if err != nil {
				return nil, err
			}
			if available < item.Quantity {
				return nil, apperr.InsufficientStock(item.ProductID, available, item.Quantity)
			}
			continue
		}

		// No variation named: the availability check spans every row the
		// product has at the source branch, but the decrement only ever
		// targets the product-level row. If the stock lives in variation
		// rows the caller has to name one; picking a row on their behalf
		// would move a variation they did not ask for.
		total, err := uc.repo.TotalQuantity(ctx, item.ProductID, input.FromBranchID)
		if err != nil {
			return nil, err
		}
		if total < item.Quantity {
			return nil, apperr.InsufficientStock(item.ProductID, total, item.Quantity)
		}

		productLevel, err := uc.repo.RecordQuantity(ctx, item.ProductID, input.FromBranchID, nil)
		if err != nil {
			return nil, err
		}
		if productLevel < item.Quantity {
			return nil, apperr.Validation(
				"product %s tracks stock per variation at this branch; variation_id is required", item.ProductID)
		}
	}

	now := time.Now()
	t := &model.Transfer{
		ID:           uuid.New().String(),
		FromBranchID: input.FromBranchID,
		ToBranchID:   input.ToBranchID,
		Status:       model.TransferStatusCompleted,
		Notes:        input.Reason,
		UserID:       input.UserID,
		TransferDate: now,
		CreatedAt:    now,
	}

	items := make([]model.TransferItem, len(input.Items))
	for i, item := range input.Items {
		variationID := item.VariationID
		if variationID != nil && *variationID == "" {
			variationID = nil
		}
		items[i] = model.TransferItem{
			ID:          uuid.New().String(),
			TransferID:  t.ID,
			ProductID:   item.ProductID,
			VariationID: variationID,
			Quantity:    item.Quantity,
		}
	}

	if err := uc.repo.ExecuteTransfer(ctx, t, items); err != nil {
		return nil, err
	}

	uc.logger.Info("transfer completed",
		zap.String("transfer_id", t.ID),
		zap.String("from_branch_id", t.FromBranchID),
		zap.String("to_branch_id", t.ToBranchID),
		zap.Int("items", len(items)))

	uc.invalidateInventoryCache(ctx)

	return uc.repo.GetByID(ctx, t.ID)
}

func validateInput(input *dto.CreateTransferInput) error {
	if input.FromBranchID == "" || input.ToBranchID == "" {
		return apperr.Validation("from_branch_id and to_branch_id are required")
	}
	if input.FromBranchID == input.ToBranchID {
		return apperr.Validation("From and to branches must be different")
	}
	if input.Reason == "" {
		return apperr.Validation("reason is required")
	}
	if len(input.Items) == 0 {
		return apperr.Validation("at least one item is required")
	}
	for _, item := range input.Items {
		if item.ProductID == "" {
			return apperr.Validation("product_id is required for every item")
		}
		if item.Quantity <= 0 {
			return apperr.Validation("quantity must be greater than zero for product %s", item.ProductID)
		}
	}
	return nil
}

func (uc *transferUseCase) invalidateInventoryCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "inventory:list:*").Result()
	if err != nil {
		uc.logger.Warn("failed to scan inventory cache keys", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *transferUseCase) ListTransfers(ctx context.Context, filters *dto.TransferFilters) ([]dto.TransferDetail, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *transferUseCase) GetTransfer(ctx context.Context, id string) (*dto.TransferDetail, error) {
	return uc.repo.GetByID(ctx, id)
}
