package potrack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

type fakePOStore struct {
	mu  sync.Mutex
	pos map[string]domain.PurchaseOrder
}

func newFakePOStore() *fakePOStore {
	return &fakePOStore{pos: make(map[string]domain.PurchaseOrder)}
}

func (f *fakePOStore) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos[po.ID] = *po
	return nil
}

func (f *fakePOStore) Get(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if po, ok := f.pos[poID]; ok {
		return &po, nil
	}
	return nil, nil
}

func (f *fakePOStore) List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PurchaseOrder
	for _, po := range f.pos {
		if status == "" || po.Status == status {
			out = append(out, po)
		}
	}
	return out, nil
}

func (f *fakePOStore) Transition(ctx context.Context, poID string, apply func(po *domain.PurchaseOrder) error) (*domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	po, ok := f.pos[poID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "purchase order", ID: poID}
	}
	if err := apply(&po); err != nil {
		return nil, err
	}
	f.pos[poID] = po
	return &po, nil
}

type fakeHistory struct {
	mu       sync.Mutex
	appended []domain.VendorOrder
}

func (f *fakeHistory) GetVendorOrders(ctx context.Context, vendorID string) ([]domain.VendorOrder, error) {
	return nil, nil
}

func (f *fakeHistory) GetDailySales(ctx context.Context, sku string, since time.Time) ([]domain.DailySales, error) {
	return nil, nil
}

func (f *fakeHistory) AppendVendorOrder(ctx context.Context, order domain.VendorOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, order)
	return nil
}

type fakeInvalidator struct {
	mu        sync.Mutex
	vendorIDs []string
}

func (f *fakeInvalidator) InvalidateVendor(ctx context.Context, vendorID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendorIDs = append(f.vendorIDs, vendorID)
}

func newTestService() (*Service, *fakePOStore, *fakeHistory, *fakeInvalidator) {
	store := newFakePOStore()
	history := &fakeHistory{}
	invalidator := &fakeInvalidator{}
	return NewService(store, history, invalidator), store, history, invalidator
}

func createParams() CreateParams {
	return CreateParams{
		VendorID:             "v-1",
		VendorName:           "Acme Supply",
		SKU:                  "WIDGET-1",
		Quantity:             50,
		CostPerUnit:          decimal.NewFromInt(12),
		ExpectedLeadTimeDays: 7,
	}
}

func TestCreatePOGeneratesNumber(t *testing.T) {
	svc, _, _, _ := newTestService()

	po, err := svc.CreatePO(context.Background(), createParams())
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	if po.Status != domain.POStatusDraft {
		t.Errorf("status = %s, want draft", po.Status)
	}
	if !strings.HasPrefix(po.PONumber, "PO-") {
		t.Errorf("po number = %q, want generated PO- prefix", po.PONumber)
	}
	if !po.TotalCost.Equal(decimal.NewFromInt(600)) {
		t.Errorf("total cost = %s, want 600", po.TotalCost)
	}
}

func TestCreatePORejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestService()

	bad := createParams()
	bad.Quantity = 0
	if _, err := svc.CreatePO(context.Background(), bad); err == nil {
		t.Error("expected rejection of zero quantity")
	}

	bad = createParams()
	bad.VendorID = ""
	if _, err := svc.CreatePO(context.Background(), bad); err == nil {
		t.Error("expected rejection of missing vendor")
	}
}

func TestReceiveFeedsOrderHistory(t *testing.T) {
	svc, _, history, invalidator := newTestService()
	ctx := context.Background()

	po, err := svc.CreatePO(ctx, createParams())
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	if _, err := svc.Order(ctx, po.ID, nil); err != nil {
		t.Fatalf("Order: %v", err)
	}
	if _, err := svc.Ship(ctx, po.ID); err != nil {
		t.Fatalf("Ship: %v", err)
	}
	received, err := svc.Receive(ctx, po.ID)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if received.Status != domain.POStatusReceived || received.ActualDeliveryDate == nil {
		t.Fatalf("received PO = %+v", received)
	}

	// The delivery is now part of the vendor's history.
	if len(history.appended) != 1 {
		t.Fatalf("appended %d orders, want 1", len(history.appended))
	}
	fed := history.appended[0]
	if fed.VendorID != "v-1" || fed.Status != domain.VendorOrderDelivered || fed.ActualDeliveryDate == nil {
		t.Errorf("fed order = %+v", fed)
	}
	if len(invalidator.vendorIDs) != 1 || invalidator.vendorIDs[0] != "v-1" {
		t.Errorf("invalidated = %v, want [v-1]", invalidator.vendorIDs)
	}
}

func TestDirectReceiveFromOrdered(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	po, _ := svc.CreatePO(ctx, createParams())
	if _, err := svc.Order(ctx, po.ID, nil); err != nil {
		t.Fatalf("Order: %v", err)
	}
	if _, err := svc.Receive(ctx, po.ID); err != nil {
		t.Fatalf("Receive straight from ordered: %v", err)
	}
}

func TestCancelReceivedRefused(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	po, _ := svc.CreatePO(ctx, createParams())
	svc.Order(ctx, po.ID, nil)
	svc.Receive(ctx, po.ID)

	_, err := svc.Cancel(ctx, po.ID, "too late")
	var transitionErr *domain.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if !strings.Contains(err.Error(), "cannot cancel received PO") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDoubleTransitionRefused(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	po, _ := svc.CreatePO(ctx, createParams())
	if _, err := svc.Order(ctx, po.ID, nil); err != nil {
		t.Fatalf("Order: %v", err)
	}
	if _, err := svc.Order(ctx, po.ID, nil); err == nil {
		t.Error("expected second order attempt to be refused")
	}
}

func TestTransitionUnknownPO(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Ship(context.Background(), "missing")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
