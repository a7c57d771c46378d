package dto

type AdjustStockInput struct {
	ProductID      string
	BranchID       string
	VariationID    *string
	QuantityChange int
	Reason         string
	ReferenceID    string
	ReferenceType  string // 'manual', 'sale'
	UserID         string
}
