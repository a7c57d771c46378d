package dto

type CreateTransferInput struct {
	FromBranchID string
	ToBranchID   string
	Reason       string
	UserID       string
	Items        []TransferItemInput
}

type TransferItemInput struct {
	ProductID   string
	VariationID *string
	Quantity    int
}

type TransferFilters struct {
	FromBranchID string
	ToBranchID   string
	Status       string
	Page         int
	PageSize     int
}
