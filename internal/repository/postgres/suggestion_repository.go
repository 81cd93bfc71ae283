package postgres

import (
	"context"
	"fmt"

	"github.com/merchops/replenish/internal/domain"
)

type suggestionRepository struct {
	db *DB
}

func NewSuggestionRepository(db *DB) *suggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Append(ctx context.Context, s domain.ReorderSuggestion) error {
	query := `
		INSERT INTO reorder_suggestions (
			id, product_id, variant_id, reorder_point, safety_stock,
			recommended_qty, vendor_id, estimated_cost, confidence_score,
			status, created_at
		) VALUES (
			:id, :product_id, :variant_id, :reorder_point, :safety_stock,
			:recommended_qty, :vendor_id, :estimated_cost, :confidence_score,
			:status, :created_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to append reorder suggestion: %w", err)
	}
	return nil
}

func (r *suggestionRepository) UpdateStatus(ctx context.Context, suggestionID string, status domain.SuggestionStatus) error {
	query := `UPDATE reorder_suggestions SET status = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, status, suggestionID)
	if err != nil {
		return fmt.Errorf("failed to update suggestion status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "suggestion", ID: suggestionID}
	}
	return nil
}

func (r *suggestionRepository) ListForProduct(ctx context.Context, productID string) ([]domain.ReorderSuggestion, error) {
	query := `
		SELECT id, product_id, variant_id, reorder_point, safety_stock,
		       recommended_qty, vendor_id, estimated_cost, confidence_score,
		       status, created_at
		FROM reorder_suggestions
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	var suggestions []domain.ReorderSuggestion
	if err := r.db.SelectContext(ctx, &suggestions, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list reorder suggestions: %w", err)
	}
	return suggestions, nil
}
