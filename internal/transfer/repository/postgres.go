package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/branchly/inventory-service/internal/apperr"
	invrepo "github.com/branchly/inventory-service/internal/inventory/repository"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/branchly/inventory-service/internal/transfer/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) RecordQuantity(ctx context.Context, productID, branchID string, variationID *string) (int, error) {
	var qty int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE product_id = $1 AND branch_id = $2`
	args := []interface{}{productID, branchID}

	if variationID != nil && *variationID != "" {
		query += ` AND variation_id = $3`
		args = append(args, *variationID)
	} else {
		query += ` AND variation_id IS NULL`
	}

	err := r.DB.GetContext(ctx, &qty, query, args...)
	return qty, err
}

func (r *PGRepository) TotalQuantity(ctx context.Context, productID, branchID string) (int, error) {
	var qty int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE product_id = $1 AND branch_id = $2`
	err := r.DB.GetContext(ctx, &qty, query, productID, branchID)
	return qty, err
}

func (r *PGRepository) ExecuteTransfer(ctx context.Context, t *model.Transfer, items []model.TransferItem) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Header first so the item foreign keys resolve.
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO transfers (id, from_branch_id, to_branch_id, status, notes, user_id, transfer_date, created_at)
        VALUES (:id, :from_branch_id, :to_branch_id, :status, :notes, :user_id, :transfer_date, :created_at)
    `, t)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	now := time.Now()

	for i := range items {
		item := &items[i]

		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO transfer_items (id, transfer_id, product_id, variation_id, quantity)
            VALUES (:id, :transfer_id, :product_id, :variation_id, :quantity)
        `, item)
		if err != nil {
			return fmt.Errorf("failed to insert transfer item: %w", err)
		}

		// Guarded decrement: the quantity >= requested clause is the
		// concurrency control. A concurrent transfer that drained the row
		// after the pre-check makes this affect zero rows.
		if err := r.decrementSource(ctx, tx, t, item, now); err != nil {
			return err
		}

		if err := invrepo.InsertMovement(ctx, tx, &model.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     item.ProductID,
			BranchID:      t.FromBranchID,
			VariationID:   item.VariationID,
			UserID:        t.UserID,
			MovementType:  model.MovementTypeOut,
			Quantity:      item.Quantity,
			Reason:        t.Notes,
			ReferenceType: refType(),
			ReferenceID:   &t.ID,
			CreatedAt:     now,
		}); err != nil {
			return fmt.Errorf("failed to log out movement: %w", err)
		}

		if err := r.incrementDestination(ctx, tx, t, item, now); err != nil {
			return err
		}

		if err := invrepo.InsertMovement(ctx, tx, &model.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     item.ProductID,
			BranchID:      t.ToBranchID,
			VariationID:   item.VariationID,
			UserID:        t.UserID,
			MovementType:  model.MovementTypeIn,
			Quantity:      item.Quantity,
			Reason:        t.Notes,
			ReferenceType: refType(),
			ReferenceID:   &t.ID,
			CreatedAt:     now,
		}); err != nil {
			return fmt.Errorf("failed to log in movement: %w", err)
		}
	}

	return tx.Commit()
}

func refType() *string {
	s := model.ReferenceTypeTransfer
	return &s
}

func (r *PGRepository) decrementSource(ctx context.Context, tx *sqlx.Tx, t *model.Transfer, item *model.TransferItem, now time.Time) error {
	query := `
        UPDATE inventory
        SET quantity = quantity - $1, updated_at = $2
        WHERE product_id = $3 AND branch_id = $4 AND quantity >= $1
    `
	args := []interface{}{item.Quantity, now, item.ProductID, t.FromBranchID}

	if item.VariationID != nil {
		query += ` AND variation_id = $5`
		args = append(args, *item.VariationID)
	} else {
		query += ` AND variation_id IS NULL`
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement source inventory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Lost the race after the pre-check. Report what is actually left.
		var available int
		availQuery := `SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE product_id = $1 AND branch_id = $2`
		availArgs := []interface{}{item.ProductID, t.FromBranchID}
		if item.VariationID != nil {
			availQuery += ` AND variation_id = $3`
			availArgs = append(availArgs, *item.VariationID)
		} else {
			availQuery += ` AND variation_id IS NULL`
		}
		if err := tx.GetContext(ctx, &available, availQuery, availArgs...); err != nil {
			return err
		}
		return apperr.InsufficientStock(item.ProductID, available, item.Quantity)
	}
	return nil
}

func (r *PGRepository) incrementDestination(ctx context.Context, tx *sqlx.Tx, t *model.Transfer, item *model.TransferItem, now time.Time) error {
	query := `
        UPDATE inventory
        SET quantity = quantity + $1, last_restocked = $2, updated_at = $2
        WHERE product_id = $3 AND branch_id = $4
    `
	args := []interface{}{item.Quantity, now, item.ProductID, t.ToBranchID}

	if item.VariationID != nil {
		query += ` AND variation_id = $5`
		args = append(args, *item.VariationID)
	} else {
		query += ` AND variation_id IS NULL`
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment destination inventory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// No row at the destination yet: create one, copying the informational
	// min/max levels from the source row we just decremented.
	insert := `
        INSERT INTO inventory (id, product_id, branch_id, variation_id, quantity, min_stock_level, max_stock_level, last_restocked, updated_at)
        SELECT $1, src.product_id, $2, src.variation_id, $3, src.min_stock_level, src.max_stock_level, $4, $4
        FROM inventory src
        WHERE src.product_id = $5 AND src.branch_id = $6
    `
	insertArgs := []interface{}{uuid.New().String(), t.ToBranchID, item.Quantity, now, item.ProductID, t.FromBranchID}

	if item.VariationID != nil {
		insert += ` AND src.variation_id = $7`
		insertArgs = append(insertArgs, *item.VariationID)
	} else {
		insert += ` AND src.variation_id IS NULL`
	}

	if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		return fmt.Errorf("failed to create destination inventory: %w", err)
	}
	return nil
}

type transferRow struct {
	model.Transfer
	FromBranchName string `db:"from_branch_name"`
	ToBranchName   string `db:"to_branch_name"`
	UserName       string `db:"user_name"`
}

type transferItemRow struct {
	model.TransferItem
	ProductName   string  `db:"product_name"`
	ProductSKU    string  `db:"product_sku"`
	VariationName *string `db:"variation_name"`
}

const transferSelect = `
    SELECT t.id, t.from_branch_id, t.to_branch_id, t.status, t.notes, t.user_id, t.transfer_date, t.created_at,
           fb.name AS from_branch_name, tb.name AS to_branch_name, u.name AS user_name
    FROM transfers t
    JOIN branches fb ON fb.id = t.from_branch_id
    JOIN branches tb ON tb.id = t.to_branch_id
    JOIN users u ON u.id = t.user_id
`

const itemSelect = `
    SELECT ti.id, ti.transfer_id, ti.product_id, ti.variation_id, ti.quantity,
           p.name AS product_name, p.sku AS product_sku, pv.name AS variation_name
    FROM transfer_items ti
    JOIN products p ON p.id = ti.product_id
    LEFT JOIN product_variations pv ON pv.id = ti.variation_id
`

func (r *PGRepository) GetByID(ctx context.Context, id string) (*dto.TransferDetail, error) {
	var row transferRow
	err := r.DB.GetContext(ctx, &row, transferSelect+` WHERE t.id = $1`, id)
	if err != nil {
		return nil, err
	}

	var itemRows []transferItemRow
	err = r.DB.SelectContext(ctx, &itemRows, itemSelect+` WHERE ti.transfer_id = $1 ORDER BY ti.id`, id)
	if err != nil {
		return nil, err
	}

	detail := mapTransferRow(&row)
	for i := range itemRows {
		detail.Items = append(detail.Items, mapItemRow(&itemRows[i]))
	}
	return detail, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TransferFilters) ([]dto.TransferDetail, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.FromBranchID != "" {
		conditions = append(conditions, "t.from_branch_id = :from_branch_id")
		args["from_branch_id"] = f.FromBranchID
	}
	if f.ToBranchID != "" {
		conditions = append(conditions, "t.to_branch_id = :to_branch_id")
		args["to_branch_id"] = f.ToBranchID
	}
	if f.Status != "" {
		conditions = append(conditions, "t.status = :status")
		args["status"] = f.Status
	}

	query := transferSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.transfer_date DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var rows []transferRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []dto.TransferDetail{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	itemQuery, itemArgs, err := sqlx.In(itemSelect+` WHERE ti.transfer_id IN (?) ORDER BY ti.id`, ids)
	if err != nil {
		return nil, err
	}
	itemQuery = r.DB.Rebind(itemQuery)

	var itemRows []transferItemRow
	if err := r.DB.SelectContext(ctx, &itemRows, itemQuery, itemArgs...); err != nil {
		return nil, err
	}

	itemsByTransfer := map[string][]dto.TransferItemDetail{}
	for i := range itemRows {
		row := &itemRows[i]
		itemsByTransfer[row.TransferID] = append(itemsByTransfer[row.TransferID], mapItemRow(row))
	}

	details := make([]dto.TransferDetail, len(rows))
	for i := range rows {
		d := mapTransferRow(&rows[i])
		d.Items = itemsByTransfer[rows[i].ID]
		details[i] = *d
	}
	return details, nil
}

func mapTransferRow(row *transferRow) *dto.TransferDetail {
	return &dto.TransferDetail{
		ID:              row.ID,
		FromBranchID:    row.FromBranchID,
		FromBranchName:  row.FromBranchName,
		ToBranchID:      row.ToBranchID,
		ToBranchName:    row.ToBranchName,
		Status:          row.Status,
		Notes:           row.Notes,
		UserID:          row.UserID,
		RequestedByName: row.UserName,
		ApprovedByName:  row.UserName,
		TransferDate:    row.TransferDate,
	}
}

func mapItemRow(row *transferItemRow) dto.TransferItemDetail {
	return dto.TransferItemDetail{
		ID:            row.ID,
		ProductID:     row.ProductID,
		ProductName:   row.ProductName,
		ProductSKU:    row.ProductSKU,
		VariationID:   row.VariationID,
		VariationName: row.VariationName,
		Quantity:      row.Quantity,
	}
}
