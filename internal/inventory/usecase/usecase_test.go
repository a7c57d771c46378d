package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
)

type fakeRepo struct {
	records   map[string]*model.InventoryRecord
	movements []model.StockMovement
	adjustErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*model.InventoryRecord{}}
}

func key(productID, branchID string, variationID *string) string {
	v := ""
	if variationID != nil {
		v = *variationID
	}
	return productID + "|" + branchID + "|" + v
}

func (r *fakeRepo) GetRecord(ctx context.Context, productID, branchID string, variationID *string) (*model.InventoryRecord, error) {
	if rec, ok := r.records[key(productID, branchID, variationID)]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	var items []model.InventoryRecord
	for _, rec := range r.records {
		items = append(items, *rec)
	}
	return items, len(items), nil
}

func (r *fakeRepo) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return r.movements, len(r.movements), nil
}

func (r *fakeRepo) AdjustStockWithMovement(ctx context.Context, inv *model.InventoryRecord, movement *model.StockMovement) error {
	if r.adjustErr != nil {
		return r.adjustErr
	}
	r.records[key(inv.ProductID, inv.BranchID, inv.VariationID)] = inv
	r.movements = append(r.movements, *movement)
	return nil
}

func adjustInput(change int) *dto.AdjustStockInput {
	return &dto.AdjustStockInput{
		ProductID:      "prod-1",
		BranchID:       "branch-a",
		QuantityChange: change,
		Reason:         "cycle count",
		ReferenceType:  model.ReferenceTypeManual,
		UserID:         "user-1",
	}
}

func TestGetProductInventoryZeroWhenMissing(t *testing.T) {
	uc := NewInventoryUseCase(newFakeRepo(), nil, nil)

	inv, err := uc.GetProductInventory(context.Background(), "prod-1", "branch-a", nil)
	if err != nil {
		t.Fatalf("GetProductInventory: %v", err)
	}
	if inv == nil || inv.Quantity != 0 {
		t.Errorf("want zero record for missing row, got %+v", inv)
	}
}

func TestAdjustStockCreatesRecordAndMovement(t *testing.T) {
	repo := newFakeRepo()
	uc := NewInventoryUseCase(repo, nil, nil)

	inv, err := uc.AdjustStock(context.Background(), adjustInput(12))
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if inv.Quantity != 12 {
		t.Errorf("quantity = %d, want 12", inv.Quantity)
	}
	if inv.LastRestocked == nil {
		t.Error("last_restocked not set on a positive delta")
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	m := repo.movements[0]
	if m.MovementType != model.MovementTypeIn || m.Quantity != 12 {
		t.Errorf("unexpected movement: %+v", m)
	}
}

func TestAdjustStockDeductionWritesOutMovement(t *testing.T) {
	repo := newFakeRepo()
	repo.records[key("prod-1", "branch-a", nil)] = &model.InventoryRecord{
		ID: "inv-1", ProductID: "prod-1", BranchID: "branch-a", Quantity: 10,
	}
	uc := NewInventoryUseCase(repo, nil, nil)

	inv, err := uc.AdjustStock(context.Background(), adjustInput(-4))
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if inv.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", inv.Quantity)
	}
	m := repo.movements[0]
	if m.MovementType != model.MovementTypeOut || m.Quantity != 4 {
		t.Errorf("deduction should log an out movement with the absolute quantity, got %+v", m)
	}
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	repo := newFakeRepo()
	repo.records[key("prod-1", "branch-a", nil)] = &model.InventoryRecord{
		ID: "inv-1", ProductID: "prod-1", BranchID: "branch-a", Quantity: 3,
	}
	uc := NewInventoryUseCase(repo, nil, nil)

	_, err := uc.AdjustStock(context.Background(), adjustInput(-5))
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 5 {
		t.Errorf("got available=%d requested=%d", stockErr.Available, stockErr.Requested)
	}
	if len(repo.movements) != 0 {
		t.Error("movement written for a rejected adjustment")
	}
	if repo.records[key("prod-1", "branch-a", nil)].Quantity != 3 {
		t.Error("stored quantity changed on rejection")
	}
}

func TestAdjustStockValidation(t *testing.T) {
	uc := NewInventoryUseCase(newFakeRepo(), nil, nil)

	tests := []struct {
		name   string
		mutate func(*dto.AdjustStockInput)
	}{
		{"zero change", func(in *dto.AdjustStockInput) { in.QuantityChange = 0 }},
		{"empty reason", func(in *dto.AdjustStockInput) { in.Reason = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := adjustInput(5)
			tt.mutate(input)
			_, err := uc.AdjustStock(context.Background(), input)
			var vErr *apperr.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
