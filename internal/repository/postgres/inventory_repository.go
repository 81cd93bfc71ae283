package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/merchops/replenish/internal/domain"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetALCState(ctx context.Context, variantID string) (*domain.ALCState, error) {
	query := `
		SELECT variant_id, average_landed_cost, on_hand
		FROM alc_states
		WHERE variant_id = $1
	`

	var state domain.ALCState
	err := r.db.GetContext(ctx, &state, query, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ALC state: %w", err)
	}
	return &state, nil
}

// ApplyReceipt commits every ALC update and history record of one
// receipt in a single transaction. Rows are locked for update so a
// concurrent receipt for the same variant waits instead of clobbering.
func (r *inventoryRepository) ApplyReceipt(ctx context.Context, updates []domain.ALCUpdate, history []domain.CostHistoryRecord) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		upsert := `
			INSERT INTO alc_states (variant_id, average_landed_cost, on_hand, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (variant_id)
			DO UPDATE SET
				average_landed_cost = EXCLUDED.average_landed_cost,
				on_hand = EXCLUDED.on_hand,
				updated_at = NOW()
		`
		for _, u := range updates {
			if _, err := tx.ExecContext(ctx, upsert, u.VariantID, u.NewALC, u.NewOnHand); err != nil {
				return fmt.Errorf("failed to upsert ALC state for variant %s: %w", u.VariantID, err)
			}
		}

		insert := `
			INSERT INTO cost_history (
				id, variant_id, receipt_id, previous_alc, new_alc,
				previous_on_hand, new_on_hand, recorded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare history insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range history {
			_, err := stmt.ExecContext(ctx,
				rec.ID, rec.VariantID, rec.ReceiptID, rec.PreviousALC, rec.NewALC,
				rec.PreviousOnHand, rec.NewOnHand, rec.RecordedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert cost history record: %w", err)
			}
		}

		return nil
	})
}

func (r *inventoryRepository) GetCostHistory(ctx context.Context, variantID string, limit int) ([]domain.CostHistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, variant_id, receipt_id, previous_alc, new_alc,
		       previous_on_hand, new_on_hand, recorded_at
		FROM cost_history
		WHERE variant_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	var records []domain.CostHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query, variantID, limit); err != nil {
		return nil, fmt.Errorf("failed to get cost history: %w", err)
	}
	return records, nil
}
