package dto

type InventoryFilters struct {
	BranchID  string
	ProductID string
	LowStock  bool // If true, filter by quantity <= min_stock_level
	Page      int
	PageSize  int
}

type MovementFilters struct {
	ProductID     string
	BranchID      string
	MovementType  string
	ReferenceType string
	Page          int
	PageSize      int
}
