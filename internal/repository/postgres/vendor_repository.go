package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/merchops/replenish/internal/domain"
)

type vendorRepository struct {
	db *DB
}

func NewVendorRepository(db *DB) *vendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	query := `
		SELECT id, name, contact_email
		FROM vendors
		WHERE id = $1
	`

	var vendor domain.Vendor
	err := r.db.GetContext(ctx, &vendor, query, vendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &vendor, nil
}

func (r *vendorRepository) ListVendorsForSKU(ctx context.Context, sku string) ([]domain.Vendor, error) {
	query := `
		SELECT v.id, v.name, v.contact_email
		FROM vendors v
		JOIN vendor_skus vs ON vs.vendor_id = v.id
		WHERE vs.sku = $1
		ORDER BY v.id
	`

	var vendors []domain.Vendor
	if err := r.db.SelectContext(ctx, &vendors, query, sku); err != nil {
		return nil, fmt.Errorf("failed to list vendors for sku: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepository) ListLocalVendorOptions(ctx context.Context, sku string) ([]domain.LocalVendorOption, error) {
	query := `
		SELECT vendor_id, vendor_name, cost_per_unit, lead_time_days,
		       reliability, min_order_qty, is_local
		FROM local_vendor_options
		WHERE sku = $1
		ORDER BY cost_per_unit
	`

	var options []domain.LocalVendorOption
	if err := r.db.SelectContext(ctx, &options, query, sku); err != nil {
		return nil, fmt.Errorf("failed to list local vendor options: %w", err)
	}
	return options, nil
}
