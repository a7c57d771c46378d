package dto

import "time"

// TransferDetail is the denormalized view the dashboard consumes: branch
// and user display names plus line items joined with product names.
// ApprovedByName mirrors RequestedByName: transfers complete instantly,
// there is no separate approval actor.
type TransferDetail struct {
	ID              string               `json:"id"`
	FromBranchID    string               `json:"from_branch_id"`
	FromBranchName  string               `json:"from_branch_name"`
	ToBranchID      string               `json:"to_branch_id"`
	ToBranchName    string               `json:"to_branch_name"`
	Status          string               `json:"status"`
	Notes           string               `json:"notes"`
	UserID          string               `json:"user_id"`
	RequestedByName string               `json:"requested_by_name"`
	ApprovedByName  string               `json:"approved_by_name"`
	TransferDate    time.Time            `json:"transfer_date"`
	Items           []TransferItemDetail `json:"items"`
}

type TransferItemDetail struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductSKU    string  `json:"product_sku"`
	VariationID   *string `json:"variation_id"`
	VariationName *string `json:"variation_name"`
	Quantity      int     `json:"quantity"`
}
