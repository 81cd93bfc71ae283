package potrack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

// MetricsInvalidator drops cached vendor metrics after a delivery
// changes the vendor's history.
type MetricsInvalidator interface {
	InvalidateVendor(ctx context.Context, vendorID string)
}

// Service owns the purchase order lifecycle. Every status change goes
// through the repository's guarded transition so two callers can never
// double-transition the same PO. Received deliveries are fed back into
// order history, which is what keeps vendor lead times honest.
type Service struct {
	pos        repository.PORepository
	orders     repository.OrderHistoryRepository
	invalidate MetricsInvalidator
}

func NewService(pos repository.PORepository, orders repository.OrderHistoryRepository, invalidate MetricsInvalidator) *Service {
	return &Service{
		pos:        pos,
		orders:     orders,
		invalidate: invalidate,
	}
}

// CreatePO validates the request and persists a draft.
func (s *Service) CreatePO(ctx context.Context, params CreateParams) (*domain.PurchaseOrder, error) {
	if params.VendorID == "" || params.SKU == "" {
		return nil, &domain.ValidationError{Entity: "purchase_order", Reason: "vendor id and sku are required"}
	}
	if params.Quantity <= 0 {
		return nil, &domain.ValidationError{Entity: "purchase_order", Reason: "quantity must be positive"}
	}
	if params.CostPerUnit.IsNegative() {
		return nil, &domain.ValidationError{Entity: "purchase_order", Reason: "cost per unit must not be negative"}
	}

	now := time.Now().UTC()
	if params.PONumber == "" {
		params.PONumber = generatePONumber(now)
	}

	po := NewPurchaseOrder(uuid.NewString(), params, now)
	if err := s.pos.Create(ctx, &po); err != nil {
		return nil, fmt.Errorf("create purchase order %s: %w", po.PONumber, err)
	}

	log.Info().
		Str("po_id", po.ID).
		Str("po_number", po.PONumber).
		Str("vendor_id", po.VendorID).
		Msg("purchase order created")
	return &po, nil
}

// GetPO returns one purchase order.
func (s *Service) GetPO(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	po, err := s.pos.Get(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, &domain.NotFoundError{Entity: "purchase order", ID: poID}
	}
	return po, nil
}

// Order places a draft PO with the vendor.
func (s *Service) Order(ctx context.Context, poID string, expectedDelivery *time.Time) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, poID, "ordered", func(po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
		return MarkOrdered(po, time.Now().UTC(), expectedDelivery)
	})
}

// Ship records shipment confirmation from the vendor.
func (s *Service) Ship(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, poID, "shipped", func(po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
		return MarkShipped(po, time.Now().UTC())
	})
}

// Receive closes out the PO and appends the completed delivery to the
// vendor's order history.
func (s *Service) Receive(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	po, err := s.transition(ctx, poID, "received", func(po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
		return MarkReceived(po, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.AppendVendorOrder(ctx, completedOrder(*po)); err != nil {
		// The transition is already committed. History can be replayed,
		// so log and return the received PO rather than failing the call.
		log.Error().Err(err).Str("po_id", po.ID).Msg("appending delivery to order history failed")
	} else if s.invalidate != nil {
		s.invalidate.InvalidateVendor(ctx, po.VendorID)
	}

	return po, nil
}

// Cancel cancels a pre-receipt PO with an optional reason.
func (s *Service) Cancel(ctx context.Context, poID, reason string) (*domain.PurchaseOrder, error) {
	return s.transition(ctx, poID, "cancelled", func(po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
		return MarkCancelled(po, reason)
	})
}

// Tracking returns the derived timing view of one PO.
func (s *Service) Tracking(ctx context.Context, poID string) (*TrackingDetails, error) {
	po, err := s.GetPO(ctx, poID)
	if err != nil {
		return nil, err
	}
	details := Track(*po, time.Now().UTC())
	return &details, nil
}

// PortfolioSummary aggregates every PO on file.
func (s *Service) PortfolioSummary(ctx context.Context) (*Summary, error) {
	pos, err := s.pos.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	summary := Summarize(pos, time.Now().UTC())
	return &summary, nil
}

// Overdue lists in-flight POs past their expected delivery date.
func (s *Service) Overdue(ctx context.Context) ([]TrackingDetails, error) {
	pos, err := s.pos.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return OverduePOs(pos, time.Now().UTC()), nil
}

// ExpectedSoon lists in-flight POs due within the window, soonest
// first.
func (s *Service) ExpectedSoon(ctx context.Context, windowDays int) ([]TrackingDetails, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	pos, err := s.pos.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return ExpectedSoon(pos, windowDays, time.Now().UTC()), nil
}

// Accuracy reports delivery promise accuracy over received POs.
func (s *Service) Accuracy(ctx context.Context) (*LeadTimeAccuracy, error) {
	pos, err := s.pos.List(ctx, domain.POStatusReceived)
	if err != nil {
		return nil, fmt.Errorf("list received purchase orders: %w", err)
	}
	accuracy := CalculateLeadTimeAccuracy(pos, time.Now().UTC())
	return &accuracy, nil
}

// Export renders the full PO book as CSV.
func (s *Service) Export(ctx context.Context) (string, error) {
	pos, err := s.pos.List(ctx, "")
	if err != nil {
		return "", fmt.Errorf("list purchase orders: %w", err)
	}
	return ExportCSV(pos, time.Now().UTC())
}

func (s *Service) transition(ctx context.Context, poID, action string, apply func(domain.PurchaseOrder) (domain.PurchaseOrder, error)) (*domain.PurchaseOrder, error) {
	po, err := s.pos.Transition(ctx, poID, func(po *domain.PurchaseOrder) error {
		updated, err := apply(*po)
		if err != nil {
			return err
		}
		*po = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("po_id", po.ID).
		Str("po_number", po.PONumber).
		Str("status", string(po.Status)).
		Msgf("purchase order %s", action)
	return po, nil
}

// completedOrder translates a received PO into the order-history shape
// consumed by vendor performance.
func completedOrder(po domain.PurchaseOrder) domain.VendorOrder {
	orderDate := po.CreatedDate
	if po.OrderedDate != nil {
		orderDate = *po.OrderedDate
	}
	expected := orderDate
	if po.ExpectedDeliveryDate != nil {
		expected = *po.ExpectedDeliveryDate
	}
	return domain.VendorOrder{
		OrderID:              po.ID,
		VendorID:             po.VendorID,
		SKU:                  po.SKU,
		Quantity:             po.Quantity,
		CostPerUnit:          po.CostPerUnit,
		OrderDate:            orderDate,
		ExpectedDeliveryDate: expected,
		ActualDeliveryDate:   po.ActualDeliveryDate,
		Status:               domain.VendorOrderDelivered,
	}
}

func generatePONumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PO-%d-%s", now.Year(), suffix)
}
