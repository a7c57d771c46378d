package model

import "time"

const (
	MovementTypeIn  = "in"
	MovementTypeOut = "out"
)

const (
	ReferenceTypeTransfer = "transfer"
	ReferenceTypeSale     = "sale"
	ReferenceTypeManual   = "manual"
)

// InventoryRecord holds stock for one (product, branch, variation) triple.
// Absence of a row means zero stock.
type InventoryRecord struct {
	ID            string     `db:"id" json:"id"`
	ProductID     string     `db:"product_id" json:"product_id"`
	BranchID      string     `db:"branch_id" json:"branch_id"`
	VariationID   *string    `db:"variation_id" json:"variation_id"`
	Quantity      int        `db:"quantity" json:"quantity"`
	MinStockLevel *int       `db:"min_stock_level" json:"min_stock_level"`
	MaxStockLevel *int       `db:"max_stock_level" json:"max_stock_level"`
	LastRestocked *time.Time `db:"last_restocked" json:"last_restocked"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StockMovement is one append-only audit row per inventory delta.
type StockMovement struct {
	ID            string    `db:"id" json:"id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	BranchID      string    `db:"branch_id" json:"branch_id"`
	VariationID   *string   `db:"variation_id" json:"variation_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	MovementType  string    `db:"movement_type" json:"movement_type"`
	Quantity      int       `db:"quantity" json:"quantity"`
	Reason        string    `db:"reason" json:"reason"`
	ReferenceType *string   `db:"reference_type" json:"reference_type"`
	ReferenceID   *string   `db:"reference_id" json:"reference_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
