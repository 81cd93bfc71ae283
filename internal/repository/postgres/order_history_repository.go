package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/merchops/replenish/internal/domain"
)

type orderHistoryRepository struct {
	db *DB
}

func NewOrderHistoryRepository(db *DB) *orderHistoryRepository {
	return &orderHistoryRepository{db: db}
}

func (r *orderHistoryRepository) GetVendorOrders(ctx context.Context, vendorID string) ([]domain.VendorOrder, error) {
	query := `
		SELECT order_id, vendor_id, sku, quantity, cost_per_unit,
		       order_date, expected_delivery_date, actual_delivery_date, status
		FROM vendor_orders
		WHERE vendor_id = $1
		ORDER BY order_date
	`

	var orders []domain.VendorOrder
	if err := r.db.SelectContext(ctx, &orders, query, vendorID); err != nil {
		return nil, fmt.Errorf("failed to get vendor orders: %w", err)
	}
	return orders, nil
}

func (r *orderHistoryRepository) GetDailySales(ctx context.Context, sku string, since time.Time) ([]domain.DailySales, error) {
	query := `
		SELECT day, SUM(quantity) AS quantity
		FROM daily_sales
		WHERE sku = $1 AND day >= $2
		GROUP BY day
		ORDER BY day
	`

	var sales []domain.DailySales
	if err := r.db.SelectContext(ctx, &sales, query, sku, since); err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}
	return sales, nil
}

func (r *orderHistoryRepository) AppendVendorOrder(ctx context.Context, order domain.VendorOrder) error {
	query := `
		INSERT INTO vendor_orders (
			order_id, vendor_id, sku, quantity, cost_per_unit,
			order_date, expected_delivery_date, actual_delivery_date, status
		) VALUES (
			:order_id, :vendor_id, :sku, :quantity, :cost_per_unit,
			:order_date, :expected_delivery_date, :actual_delivery_date, :status
		)
		ON CONFLICT (order_id) DO NOTHING
	`

	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("failed to append vendor order: %w", err)
	}
	return nil
}
