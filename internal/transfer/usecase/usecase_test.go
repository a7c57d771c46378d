package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/transfer/dto"
)

// fakeRepo mimics the guarded-update semantics of the real repository on
// in-memory state: ExecuteTransfer either applies every item or nothing.
type fakeRepo struct {
	stock     map[string]*model.InventoryRecord
	transfers map[string]*model.Transfer
	items     map[string][]model.TransferItem
	movements []model.StockMovement

	// drainBeforeExecute simulates a concurrent transfer winning the race
	// between the availability pre-check and the commit phase.
	drainBeforeExecute func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stock:     map[string]*model.InventoryRecord{},
		transfers: map[string]*model.Transfer{},
		items:     map[string][]model.TransferItem{},
	}
}

func key(productID, branchID string, variationID *string) string {
	v := ""
	if variationID != nil {
		v = *variationID
	}
	return productID + "|" + branchID + "|" + v
}

func (r *fakeRepo) seed(productID, branchID string, variationID *string, qty int, minLevel, maxLevel *int) {
	r.stock[key(productID, branchID, variationID)] = &model.InventoryRecord{
		ID:            key(productID, branchID, variationID),
		ProductID:     productID,
		BranchID:      branchID,
		VariationID:   variationID,
		Quantity:      qty,
		MinStockLevel: minLevel,
		MaxStockLevel: maxLevel,
	}
}

func (r *fakeRepo) RecordQuantity(ctx context.Context, productID, branchID string, variationID *string) (int, error) {
	if rec, ok := r.stock[key(productID, branchID, variationID)]; ok {
		return rec.Quantity, nil
	}
	return 0, nil
}

func (r *fakeRepo) TotalQuantity(ctx context.Context, productID, branchID string) (int, error) {
	total := 0
	for _, rec := range r.stock {
		if rec.ProductID == productID && rec.BranchID == branchID {
			total += rec.Quantity
		}
	}
	return total, nil
}

func (r *fakeRepo) ExecuteTransfer(ctx context.Context, t *model.Transfer, items []model.TransferItem) error {
	if r.drainBeforeExecute != nil {
		r.drainBeforeExecute()
	}

	// Guard check first so a failure leaves the state untouched, like a
	// rolled-back transaction.
	for _, item := range items {
		src, ok := r.stock[key(item.ProductID, t.FromBranchID, item.VariationID)]
		if !ok || src.Quantity < item.Quantity {
			available := 0
			if ok {
				available = src.Quantity
			}
			return apperr.InsufficientStock(item.ProductID, available, item.Quantity)
		}
	}

	for _, item := range items {
		src := r.stock[key(item.ProductID, t.FromBranchID, item.VariationID)]
		src.Quantity -= item.Quantity

		dstKey := key(item.ProductID, t.ToBranchID, item.VariationID)
		if dst, ok := r.stock[dstKey]; ok {
			dst.Quantity += item.Quantity
		} else {
			r.stock[dstKey] = &model.InventoryRecord{
				ID:            dstKey,
				ProductID:     item.ProductID,
				BranchID:      t.ToBranchID,
				VariationID:   item.VariationID,
				Quantity:      item.Quantity,
				MinStockLevel: src.MinStockLevel,
				MaxStockLevel: src.MaxStockLevel,
			}
		}

		refType := model.ReferenceTypeTransfer
		r.movements = append(r.movements,
			model.StockMovement{
				ProductID: item.ProductID, BranchID: t.FromBranchID, VariationID: item.VariationID,
				UserID: t.UserID, MovementType: model.MovementTypeOut, Quantity: item.Quantity,
				Reason: t.Notes, ReferenceType: &refType, ReferenceID: &t.ID,
			},
			model.StockMovement{
				ProductID: item.ProductID, BranchID: t.ToBranchID, VariationID: item.VariationID,
				UserID: t.UserID, MovementType: model.MovementTypeIn, Quantity: item.Quantity,
				Reason: t.Notes, ReferenceType: &refType, ReferenceID: &t.ID,
			},
		)
	}

	r.transfers[t.ID] = t
	r.items[t.ID] = items
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*dto.TransferDetail, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, fmt.Errorf("transfer %s not found", id)
	}
	detail := &dto.TransferDetail{
		ID:              t.ID,
		FromBranchID:    t.FromBranchID,
		FromBranchName:  "Branch " + t.FromBranchID,
		ToBranchID:      t.ToBranchID,
		ToBranchName:    "Branch " + t.ToBranchID,
		Status:          t.Status,
		Notes:           t.Notes,
		UserID:          t.UserID,
		RequestedByName: "User " + t.UserID,
		ApprovedByName:  "User " + t.UserID,
		TransferDate:    t.TransferDate,
	}
	for _, item := range r.items[id] {
		detail.Items = append(detail.Items, dto.TransferItemDetail{
			ID:          item.ID,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}
	return detail, nil
}

func (r *fakeRepo) FindAll(ctx context.Context, f *dto.TransferFilters) ([]dto.TransferDetail, error) {
	var details []dto.TransferDetail
	for id := range r.transfers {
		d, _ := r.GetByID(ctx, id)
		details = append(details, *d)
	}
	return details, nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validInput() *dto.CreateTransferInput {
	return &dto.CreateTransferInput{
		FromBranchID: "branch-a",
		ToBranchID:   "branch-b",
		Reason:       "restock downtown store",
		UserID:       "user-1",
		Items: []dto.TransferItemInput{
			{ProductID: "prod-1", Quantity: 4},
		},
	}
}

func TestCreateTransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.CreateTransferInput)
		wantMsg string
	}{
		{
			name:    "same branch",
			mutate:  func(in *dto.CreateTransferInput) { in.ToBranchID = in.FromBranchID },
			wantMsg: "From and to branches must be different",
		},
		{
			name:    "missing from branch",
			mutate:  func(in *dto.CreateTransferInput) { in.FromBranchID = "" },
			wantMsg: "from_branch_id and to_branch_id are required",
		},
		{
			name:    "empty reason",
			mutate:  func(in *dto.CreateTransferInput) { in.Reason = "" },
			wantMsg: "reason is required",
		},
		{
			name:    "no items",
			mutate:  func(in *dto.CreateTransferInput) { in.Items = nil },
			wantMsg: "at least one item is required",
		},
		{
			name:    "zero quantity",
			mutate:  func(in *dto.CreateTransferInput) { in.Items[0].Quantity = 0 },
			wantMsg: "quantity must be greater than zero",
		},
		{
			name:    "negative quantity",
			mutate:  func(in *dto.CreateTransferInput) { in.Items[0].Quantity = -3 },
			wantMsg: "quantity must be greater than zero",
		},
		{
			name:    "missing product id",
			mutate:  func(in *dto.CreateTransferInput) { in.Items[0].ProductID = "" },
			wantMsg: "product_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.seed("prod-1", "branch-a", nil, 10, nil, nil)
			uc := NewTransferUseCase(repo, nil, nil)

			input := validInput()
			tt.mutate(input)

			_, err := uc.CreateTransfer(context.Background(), input)
			var vErr *apperr.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
			if len(repo.transfers) != 0 || len(repo.movements) != 0 {
				t.Error("validation failure must not mutate state")
			}
		})
	}
}

func TestCreateTransferMovesStock(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", nil, 10, intPtr(2), intPtr(50))
	uc := NewTransferUseCase(repo, nil, nil)

	detail, err := uc.CreateTransfer(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	if detail.Status != model.TransferStatusCompleted {
		t.Errorf("status = %q, want %q", detail.Status, model.TransferStatusCompleted)
	}
	if len(detail.Items) != 1 || detail.Items[0].Quantity != 4 {
		t.Fatalf("unexpected items: %+v", detail.Items)
	}

	src := repo.stock[key("prod-1", "branch-a", nil)]
	if src.Quantity != 6 {
		t.Errorf("source quantity = %d, want 6", src.Quantity)
	}

	dst := repo.stock[key("prod-1", "branch-b", nil)]
	if dst == nil {
		t.Fatal("destination row was not created")
	}
	if dst.Quantity != 4 {
		t.Errorf("destination quantity = %d, want 4", dst.Quantity)
	}
	if dst.MinStockLevel == nil || *dst.MinStockLevel != 2 {
		t.Error("min_stock_level not copied from source row")
	}
	if dst.MaxStockLevel == nil || *dst.MaxStockLevel != 50 {
		t.Error("max_stock_level not copied from source row")
	}
}

func TestCreateTransferAuditTrail(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", nil, 10, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	detail, err := uc.CreateTransfer(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	if len(repo.movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(repo.movements))
	}

	out, in := repo.movements[0], repo.movements[1]
	if out.MovementType != model.MovementTypeOut || out.BranchID != "branch-a" || out.Quantity != 4 {
		t.Errorf("unexpected out movement: %+v", out)
	}
	if in.MovementType != model.MovementTypeIn || in.BranchID != "branch-b" || in.Quantity != 4 {
		t.Errorf("unexpected in movement: %+v", in)
	}
	for _, m := range repo.movements {
		if m.ReferenceType == nil || *m.ReferenceType != model.ReferenceTypeTransfer {
			t.Error("movement missing transfer reference type")
		}
		if m.ReferenceID == nil || *m.ReferenceID != detail.ID {
			t.Error("movement does not reference the transfer id")
		}
	}
}

func TestCreateTransferInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", nil, 3, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	input := validInput()
	input.Items[0].Quantity = 5

	_, err := uc.CreateTransfer(context.Background(), input)
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Available: 3, Requested: 5") {
		t.Errorf("error message %q missing quantities", err.Error())
	}
	if len(repo.transfers) != 0 || len(repo.movements) != 0 {
		t.Error("failed transfer must not mutate state")
	}
	if repo.stock[key("prod-1", "branch-a", nil)].Quantity != 3 {
		t.Error("source quantity changed on failed transfer")
	}
}

func TestCreateTransferAtomicAcrossItems(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", nil, 10, nil, nil)
	repo.seed("prod-2", "branch-a", nil, 1, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	input := validInput()
	input.Items = append(input.Items, dto.TransferItemInput{ProductID: "prod-2", Quantity: 5})

	_, err := uc.CreateTransfer(context.Background(), input)
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != "prod-2" {
		t.Errorf("error names product %q, want prod-2", stockErr.ProductID)
	}
	if repo.stock[key("prod-1", "branch-a", nil)].Quantity != 10 {
		t.Error("first item applied despite second item failing")
	}
	if len(repo.transfers) != 0 || len(repo.movements) != 0 {
		t.Error("partial transfer state leaked")
	}
}

func TestCreateTransferRaceDetectedAtCommit(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", nil, 10, nil, nil)
	// A concurrent transfer drains the row after the pre-check passes.
	repo.drainBeforeExecute = func() {
		repo.stock[key("prod-1", "branch-a", nil)].Quantity = 2
	}
	uc := NewTransferUseCase(repo, nil, nil)

	input := validInput()
	input.Items[0].Quantity = 6

	_, err := uc.CreateTransfer(context.Background(), input)
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != 6 {
		t.Errorf("got available=%d requested=%d, want 2 and 6", stockErr.Available, stockErr.Requested)
	}
	if repo.stock[key("prod-1", "branch-a", nil)].Quantity != 2 {
		t.Error("racing transfer state was disturbed")
	}
}

func TestCreateTransferVariationExactRow(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", strPtr("var-red"), 7, nil, nil)
	repo.seed("prod-1", "branch-a", strPtr("var-blue"), 9, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	input := validInput()
	input.Items[0].VariationID = strPtr("var-red")
	input.Items[0].Quantity = 7

	detail, err := uc.CreateTransfer(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if detail.Items[0].VariationID == nil || *detail.Items[0].VariationID != "var-red" {
		t.Error("variation id lost on the way through")
	}
	if repo.stock[key("prod-1", "branch-a", strPtr("var-red"))].Quantity != 0 {
		t.Error("variation row not drained")
	}
	if repo.stock[key("prod-1", "branch-a", strPtr("var-blue"))].Quantity != 9 {
		t.Error("sibling variation row touched")
	}
}

func TestCreateTransferVariationRequiredWhenStockIsPerVariation(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", strPtr("var-red"), 6, nil, nil)
	repo.seed("prod-1", "branch-a", strPtr("var-blue"), 4, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	// Aggregate stock (10) covers the request, but no product-level row
	// exists to decrement, so the caller must name a variation.
	input := validInput()
	input.Items[0].Quantity = 5

	_, err := uc.CreateTransfer(context.Background(), input)
	var vErr *apperr.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "variation_id is required") {
		t.Errorf("error %q should ask for a variation", err.Error())
	}
	if len(repo.transfers) != 0 {
		t.Error("transfer created despite ambiguous target row")
	}
}

func TestCreateTransferAggregateShortfallUsesSum(t *testing.T) {
	repo := newFakeRepo()
	repo.seed("prod-1", "branch-a", strPtr("var-red"), 2, nil, nil)
	repo.seed("prod-1", "branch-a", strPtr("var-blue"), 1, nil, nil)
	uc := NewTransferUseCase(repo, nil, nil)

	input := validInput()
	input.Items[0].Quantity = 5

	_, err := uc.CreateTransfer(context.Background(), input)
	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 3 {
		t.Errorf("available = %d, want the sum across variation rows (3)", stockErr.Available)
	}
}

func TestListTransfersDefaultsPagination(t *testing.T) {
	repo := newFakeRepo()
	uc := NewTransferUseCase(repo, nil, nil)

	filters := &dto.TransferFilters{}
	if _, err := uc.ListTransfers(context.Background(), filters); err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if filters.Page != 1 || filters.PageSize != 20 {
		t.Errorf("defaults not applied: page=%d size=%d", filters.Page, filters.PageSize)
	}
}
