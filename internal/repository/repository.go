package repository

import (
	"context"
	"time"

	"github.com/merchops/replenish/internal/domain"
)

// InventoryRepository provides current ALC state and persists receipt
// outcomes. ApplyReceipt must commit the updates and history records in
// a single transaction: either all of a receipt lands or none of it.
type InventoryRepository interface {
	GetALCState(ctx context.Context, variantID string) (*domain.ALCState, error)
	ApplyReceipt(ctx context.Context, updates []domain.ALCUpdate, history []domain.CostHistoryRecord) error
	GetCostHistory(ctx context.Context, variantID string, limit int) ([]domain.CostHistoryRecord, error)
}

// OrderHistoryRepository returns historical demand and vendor order
// data, and accepts completed deliveries fed back by the PO tracker.
type OrderHistoryRepository interface {
	GetVendorOrders(ctx context.Context, vendorID string) ([]domain.VendorOrder, error)
	GetDailySales(ctx context.Context, sku string, since time.Time) ([]domain.DailySales, error)
	AppendVendorOrder(ctx context.Context, order domain.VendorOrder) error
}

// VendorRepository is the vendor catalog.
type VendorRepository interface {
	GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error)
	ListVendorsForSKU(ctx context.Context, sku string) ([]domain.Vendor, error)
	ListLocalVendorOptions(ctx context.Context, sku string) ([]domain.LocalVendorOption, error)
}

// PORepository persists purchase orders. Transition must guard the row
// (per-PO lock) so concurrent double-transitions cannot interleave, and
// must never delete records.
type PORepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	Get(ctx context.Context, poID string) (*domain.PurchaseOrder, error)
	List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error)
	Transition(ctx context.Context, poID string, apply func(po *domain.PurchaseOrder) error) (*domain.PurchaseOrder, error)
}

// SuggestionRepository is the append-only reorder suggestions log.
type SuggestionRepository interface {
	Append(ctx context.Context, s domain.ReorderSuggestion) error
	UpdateStatus(ctx context.Context, suggestionID string, status domain.SuggestionStatus) error
	ListForProduct(ctx context.Context, productID string) ([]domain.ReorderSuggestion, error)
}
