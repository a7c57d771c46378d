package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/inventory"
	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/platform/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	logger *zap.Logger
}

// NewInventoryUseCase builds the inventory use case. cache may be nil, in
// which case locking and list caching are skipped.
func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, log *zap.Logger) inventory.UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, productID, branchID string, variationID *string) (*model.InventoryRecord, error) {
	inv, err := uc.repo.GetRecord(ctx, productID, branchID, variationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// No row means zero stock. Return a zero object instead of nil.
		return &model.InventoryRecord{
			ProductID:   productID,
			BranchID:    branchID,
			VariationID: variationID,
			Quantity:    0,
		}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListInventory(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	cacheKey := uc.listCacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Items []model.InventoryRecord
				Count int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Items, result.Count, nil
			}
		}
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil && cacheKey != "" {
		cacheData := struct {
			Items []model.InventoryRecord
			Count int
		}{Items: items, Count: count}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 2*time.Minute)
		}
	}

	return items, count, nil
}

func (uc *inventoryUseCase) listCacheKey(filters *dto.InventoryFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("inventory:list:%x", md5.Sum(data))
}

// invalidateListCache drops every cached inventory listing. Called after
// any stock mutation; the transfer engine does the same on commit.
func (uc *inventoryUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "inventory:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryRecord, error) {
	if input.QuantityChange == 0 {
		return nil, apperr.Validation("quantity change must not be zero")
	}
	if input.Reason == "" {
		return nil, apperr.Validation("reason is required")
	}

	if uc.cache != nil {
		lockKey := fmt.Sprintf("lock:inventory:%s:%s", input.BranchID, input.ProductID)
		if input.VariationID != nil {
			lockKey += ":" + *input.VariationID
		}

		lockValue := uuid.New().String()
		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond) // wait before retry
		}

		if !acquired {
			return nil, fmt.Errorf("system busy, please try again later (lock)")
		}
		defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)
	}

	inv, err := uc.repo.GetRecord(ctx, input.ProductID, input.BranchID, input.VariationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if inv == nil {
		inv = &model.InventoryRecord{
			ID:          uuid.New().String(),
			ProductID:   input.ProductID,
			BranchID:    input.BranchID,
			VariationID: input.VariationID,
			Quantity:    0,
			UpdatedAt:   now,
		}
	}

	available := inv.Quantity
	inv.Quantity += input.QuantityChange
	inv.UpdatedAt = now
	if input.QuantityChange > 0 {
		inv.LastRestocked = &now
	}

	if inv.Quantity < 0 {
		return nil, apperr.InsufficientStock(input.ProductID, available, -input.QuantityChange)
	}

	movementType := model.MovementTypeIn
	quantity := input.QuantityChange
	if quantity < 0 {
		movementType = model.MovementTypeOut
		quantity = -quantity
	}

	var refID *string
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}
	var refType *string
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}

	movement := &model.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     input.ProductID,
		BranchID:      input.BranchID,
		VariationID:   input.VariationID,
		UserID:        input.UserID,
		MovementType:  movementType,
		Quantity:      quantity,
		Reason:        input.Reason,
		ReferenceType: refType,
		ReferenceID:   refID,
		CreatedAt:     now,
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, inv, movement); err != nil {
		return nil, err
	}

	uc.invalidateListCache(ctx)

	return inv, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}
