package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/merchops/replenish/internal/domain"
)

type poRepository struct {
	db *DB
}

func NewPORepository(db *DB) *poRepository {
	return &poRepository{db: db}
}

const poColumns = `
	id, po_number, vendor_id, vendor_name, sku, quantity,
	cost_per_unit, total_cost, status, created_date, ordered_date,
	shipped_date, expected_delivery_date, actual_delivery_date, notes
`

func (r *poRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (
			id, po_number, vendor_id, vendor_name, sku, quantity,
			cost_per_unit, total_cost, status, created_date, ordered_date,
			shipped_date, expected_delivery_date, actual_delivery_date, notes
		) VALUES (
			:id, :po_number, :vendor_id, :vendor_name, :sku, :quantity,
			:cost_per_unit, :total_cost, :status, :created_date, :ordered_date,
			:shipped_date, :expected_delivery_date, :actual_delivery_date, :notes
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, po); err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return nil
}

func (r *poRepository) Get(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE id = $1`

	var po domain.PurchaseOrder
	err := r.db.GetContext(ctx, &po, query, poID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return &po, nil
}

func (r *poRepository) List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_date DESC`

	var pos []domain.PurchaseOrder
	if err := r.db.SelectContext(ctx, &pos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return pos, nil
}

// Transition loads the PO under a row lock, applies the mutation and
// writes it back. The lock serializes concurrent transitions on the
// same PO so a double Receive cannot interleave.
func (r *poRepository) Transition(ctx context.Context, poID string, apply func(po *domain.PurchaseOrder) error) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE id = $1 FOR UPDATE`

		err := tx.GetContext(ctx, &po, query, poID)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "purchase order", ID: poID}
		}
		if err != nil {
			return fmt.Errorf("failed to lock purchase order: %w", err)
		}

		if err := apply(&po); err != nil {
			return err
		}

		update := `
			UPDATE purchase_orders SET
				status = :status,
				ordered_date = :ordered_date,
				shipped_date = :shipped_date,
				expected_delivery_date = :expected_delivery_date,
				actual_delivery_date = :actual_delivery_date,
				notes = :notes
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, update, po); err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &po, nil
}
