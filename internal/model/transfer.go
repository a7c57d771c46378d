package model

import "time"

// Transfers are instant: the row is written already completed, together
// with its items and both audit movements, in one transaction.
const TransferStatusCompleted = "completed"

type Transfer struct {
	ID           string    `db:"id" json:"id"`
	FromBranchID string    `db:"from_branch_id" json:"from_branch_id"`
	ToBranchID   string    `db:"to_branch_id" json:"to_branch_id"`
	Status       string    `db:"status" json:"status"`
	Notes        string    `db:"notes" json:"notes"`
	UserID       string    `db:"user_id" json:"user_id"`
	TransferDate time.Time `db:"transfer_date" json:"transfer_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type TransferItem struct {
	ID          string  `db:"id" json:"id"`
	TransferID  string  `db:"transfer_id" json:"transfer_id"`
	ProductID   string  `db:"product_id" json:"product_id"`
	VariationID *string `db:"variation_id" json:"variation_id"`
	Quantity    int     `db:"quantity" json:"quantity"`
}
