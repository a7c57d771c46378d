package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/branchly/inventory-service/internal/inventory/dto"
	"github.com/branchly/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetRecord(ctx context.Context, productID, branchID string, variationID *string) (*model.InventoryRecord, error) {
	var inv model.InventoryRecord
	query := `SELECT * FROM inventory WHERE product_id = $1 AND branch_id = $2`
	args := []interface{}{productID, branchID}

	if variationID != nil && *variationID != "" {
		query += ` AND variation_id = $3`
		args = append(args, *variationID)
	} else {
		query += ` AND variation_id IS NULL`
	}

	err := r.DB.GetContext(ctx, &inv, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No row means zero stock (caller handles defaults)
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	var items []model.InventoryRecord
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.BranchID != "" {
		conditions = append(conditions, "branch_id = :branch_id")
		args["branch_id"] = f.BranchID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LowStock {
		conditions = append(conditions, "min_stock_level IS NOT NULL AND quantity <= min_stock_level")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.BranchID != "" {
		conditions = append(conditions, "branch_id = :branch_id")
		args["branch_id"] = f.BranchID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

// InsertMovement appends one audit row on the given execer, so the same
// code path serves standalone adjustments and in-transaction transfer
// writes. It never updates or deletes.
func InsertMovement(ctx context.Context, ext sqlx.ExtContext, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, branch_id, variation_id, user_id,
            movement_type, quantity, reason, reference_type, reference_id, created_at
        )
        VALUES (
            :id, :product_id, :branch_id, :variation_id, :user_id,
            :movement_type, :quantity, :reason, :reference_type, :reference_id, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, ext, query, m)
	return err
}

func upsertRecord(ctx context.Context, ext sqlx.ExtContext, inv *model.InventoryRecord) error {
	query := `
        INSERT INTO inventory (
            id, product_id, branch_id, variation_id,
            quantity, min_stock_level, max_stock_level, last_restocked, updated_at
        )
        VALUES (
            :id, :product_id, :branch_id, :variation_id,
            :quantity, :min_stock_level, :max_stock_level, :last_restocked, :updated_at
        )
        ON CONFLICT (id)
        DO UPDATE SET
            quantity = EXCLUDED.quantity,
            min_stock_level = EXCLUDED.min_stock_level,
            max_stock_level = EXCLUDED.max_stock_level,
            last_restocked = EXCLUDED.last_restocked,
            updated_at = EXCLUDED.updated_at
    `
	_, err := sqlx.NamedExecContext(ctx, ext, query, inv)
	return err
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, inv *model.InventoryRecord, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertRecord(ctx, tx, inv); err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	if err := InsertMovement(ctx, tx, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}
