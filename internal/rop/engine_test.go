package rop

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/vendorperf"
	"github.com/shopspring/decimal"
)

type fakeInventory struct {
	states map[string]domain.ALCState
}

func (f *fakeInventory) GetALCState(ctx context.Context, variantID string) (*domain.ALCState, error) {
	if state, ok := f.states[variantID]; ok {
		return &state, nil
	}
	return nil, nil
}

func (f *fakeInventory) ApplyReceipt(ctx context.Context, updates []domain.ALCUpdate, history []domain.CostHistoryRecord) error {
	return nil
}

func (f *fakeInventory) GetCostHistory(ctx context.Context, variantID string, limit int) ([]domain.CostHistoryRecord, error) {
	return nil, nil
}

type fakeOrderHistory struct {
	sales map[string][]domain.DailySales
}

func (f *fakeOrderHistory) GetVendorOrders(ctx context.Context, vendorID string) ([]domain.VendorOrder, error) {
	return nil, nil
}

func (f *fakeOrderHistory) GetDailySales(ctx context.Context, sku string, since time.Time) ([]domain.DailySales, error) {
	return f.sales[sku], nil
}

func (f *fakeOrderHistory) AppendVendorOrder(ctx context.Context, order domain.VendorOrder) error {
	return nil
}

type fakeSuggestions struct {
	mu       sync.Mutex
	appended []domain.ReorderSuggestion
	statuses map[string]domain.SuggestionStatus
}

func (f *fakeSuggestions) Append(ctx context.Context, s domain.ReorderSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, s)
	return nil
}

func (f *fakeSuggestions) UpdateStatus(ctx context.Context, suggestionID string, status domain.SuggestionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = make(map[string]domain.SuggestionStatus)
	}
	f.statuses[suggestionID] = status
	return nil
}

func (f *fakeSuggestions) ListForProduct(ctx context.Context, productID string) ([]domain.ReorderSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReorderSuggestion
	for _, s := range f.appended {
		if s.ProductID == productID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePerf struct {
	candidates map[string][]vendorperf.VendorWithMetrics
}

func (f *fakePerf) CandidatesForSKU(ctx context.Context, sku string) ([]vendorperf.VendorWithMetrics, error) {
	if c, ok := f.candidates[sku]; ok {
		return c, nil
	}
	return nil, &domain.NotFoundError{Entity: "vendors for sku", ID: sku}
}

func steadySales(days int, qty int64) []domain.DailySales {
	sales := make([]domain.DailySales, 0, days)
	start := time.Now().UTC().AddDate(0, 0, -days)
	for i := 0; i < days; i++ {
		sales = append(sales, domain.DailySales{Day: start.AddDate(0, 0, i), Quantity: qty})
	}
	return sales
}

func vendorWithHistory(id, name string, leadDays, reliabilityPct float64, cost int64) vendorperf.VendorWithMetrics {
	return vendorperf.VendorWithMetrics{
		Vendor: domain.Vendor{ID: id, Name: name},
		Metrics: domain.VendorPerformanceMetrics{
			VendorID:            id,
			VendorName:          name,
			CompletedOrders:     10,
			AverageLeadTimeDays: leadDays,
			ReliabilityScore:    reliabilityPct,
			AverageCostPerUnit:  decimal.NewFromInt(cost),
		},
	}
}

func defaults() config.EngineConfig {
	return config.EngineConfig{
		ServiceLevel:     0.95,
		HistoricalDays:   30,
		ReorderBufferDay: 7,
		BatchWorkers:     4,
	}
}

func newTestEngine(sales map[string][]domain.DailySales, states map[string]domain.ALCState, perf *fakePerf) (*Engine, *fakeSuggestions) {
	suggestions := &fakeSuggestions{}
	engine := NewEngine(
		&fakeInventory{states: states},
		&fakeOrderHistory{sales: sales},
		perf,
		suggestions,
		defaults(),
	)
	return engine, suggestions
}

func TestCalculateFullPipeline(t *testing.T) {
	engine, suggestions := newTestEngine(
		map[string][]domain.DailySales{"WIDGET-1": steadySales(30, 3)},
		map[string]domain.ALCState{"var-1": {VariantID: "var-1", AverageLandedCost: decimal.NewFromInt(9), OnHand: 20}},
		&fakePerf{candidates: map[string][]vendorperf.VendorWithMetrics{
			"WIDGET-1": {vendorWithHistory("v-1", "Acme Supply", 10, 90, 10)},
		}},
	)

	result, err := engine.Calculate(context.Background(), Params{
		ProductID: "prod-1",
		VariantID: "var-1",
		SKU:       "WIDGET-1",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// Steady 3/day demand, 10 day lead time, zero variance.
	if result.LeadTimeDemand != 30 {
		t.Errorf("lead time demand = %d, want 30", result.LeadTimeDemand)
	}
	if result.SafetyStock != 0 {
		t.Errorf("safety stock = %d, want 0 for zero-variance demand", result.SafetyStock)
	}
	if result.ReorderPoint != 30 {
		t.Errorf("reorder point = %d, want 30", result.ReorderPoint)
	}
	// 30 − 20 on hand + ceil(3×7) buffer.
	if result.RecommendedQuantity != 31 {
		t.Errorf("recommended qty = %d, want 31", result.RecommendedQuantity)
	}
	if result.Vendor == nil || result.Vendor.VendorID != "v-1" {
		t.Fatalf("vendor recommendation = %+v, want v-1", result.Vendor)
	}
	if !result.Vendor.EstimatedCost.Equal(decimal.NewFromInt(310)) {
		t.Errorf("estimated cost = %s, want 310", result.Vendor.EstimatedCost)
	}

	// The derivation is snapshotted to the suggestions log.
	if len(suggestions.appended) != 1 {
		t.Fatalf("appended %d suggestions, want 1", len(suggestions.appended))
	}
	snap := suggestions.appended[0]
	if snap.Status != domain.SuggestionPending || snap.RecommendedQty != 31 || snap.VendorID != "v-1" {
		t.Errorf("suggestion snapshot = %+v", snap)
	}
}

func TestCalculateNoVendorsFallsBackToDefaults(t *testing.T) {
	engine, _ := newTestEngine(
		map[string][]domain.DailySales{"WIDGET-2": steadySales(30, 1)},
		nil,
		&fakePerf{},
	)

	result, err := engine.Calculate(context.Background(), Params{
		ProductID: "prod-2",
		VariantID: "var-2",
		SKU:       "WIDGET-2",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if result.Vendor != nil {
		t.Errorf("vendor recommendation = %+v, want none", result.Vendor)
	}
	// Catalog default lead time of 14 days, no stock on hand.
	if result.LeadTimeDays != 14 {
		t.Errorf("lead time = %v, want default 14", result.LeadTimeDays)
	}
	if result.RecommendedQuantity != 21 {
		t.Errorf("recommended qty = %d, want 21", result.RecommendedQuantity)
	}
}

func TestCalculateAppliesVelocityAdjustments(t *testing.T) {
	engine, _ := newTestEngine(
		map[string][]domain.DailySales{"WIDGET-1": steadySales(30, 2)},
		nil,
		&fakePerf{candidates: map[string][]vendorperf.VendorWithMetrics{
			"WIDGET-1": {vendorWithHistory("v-1", "Acme Supply", 10, 90, 10)},
		}},
	)

	result, err := engine.Calculate(context.Background(), Params{
		ProductID:            "prod-1",
		VariantID:            "var-1",
		SKU:                  "WIDGET-1",
		Method:               MethodPromotional,
		PromotionalUpliftPct: 100,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// Doubled velocity doubles lead time demand.
	if result.AdjustedDailyVelocity != 4 {
		t.Errorf("adjusted velocity = %v, want 4", result.AdjustedDailyVelocity)
	}
	if result.LeadTimeDemand != 40 {
		t.Errorf("lead time demand = %d, want 40", result.LeadTimeDemand)
	}
}

func TestCalculateRejectsUnknownMethod(t *testing.T) {
	engine, _ := newTestEngine(nil, nil, &fakePerf{})

	_, err := engine.Calculate(context.Background(), Params{
		ProductID: "prod-1",
		VariantID: "var-1",
		SKU:       "WIDGET-1",
		Method:    "clairvoyant",
	})
	if err == nil || !strings.Contains(err.Error(), "clairvoyant") {
		t.Fatalf("err = %v, want unknown method rejection", err)
	}
}

func TestBatchCalculateIsolatesFailures(t *testing.T) {
	engine, suggestions := newTestEngine(
		map[string][]domain.DailySales{"WIDGET-1": steadySales(30, 3)},
		nil,
		&fakePerf{candidates: map[string][]vendorperf.VendorWithMetrics{
			"WIDGET-1": {vendorWithHistory("v-1", "Acme Supply", 10, 90, 10)},
		}},
	)

	items := []Params{
		{ProductID: "prod-1", VariantID: "var-1", SKU: "WIDGET-1"},
		{ProductID: "prod-bad"}, // missing variant and sku
		{ProductID: "prod-3", VariantID: "var-3", SKU: "WIDGET-1"},
	}

	results := engine.BatchCalculate(context.Background(), items)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Error != "" || results[0].Result == nil {
		t.Errorf("result 0 = %+v, want success", results[0])
	}
	if results[1].Error == "" || results[1].Result != nil {
		t.Errorf("result 1 = %+v, want isolated failure", results[1])
	}
	if results[2].Error != "" || results[2].Result == nil {
		t.Errorf("result 2 = %+v, want success despite sibling failure", results[2])
	}
	// Only the successful calculations were snapshotted.
	if len(suggestions.appended) != 2 {
		t.Errorf("appended %d suggestions, want 2", len(suggestions.appended))
	}
}

func TestUpdateSuggestionStatus(t *testing.T) {
	engine, suggestions := newTestEngine(nil, nil, &fakePerf{})

	if err := engine.UpdateSuggestionStatus(context.Background(), "sug-1", domain.SuggestionApproved); err != nil {
		t.Fatalf("UpdateSuggestionStatus: %v", err)
	}
	if suggestions.statuses["sug-1"] != domain.SuggestionApproved {
		t.Errorf("status = %s, want approved", suggestions.statuses["sug-1"])
	}

	if err := engine.UpdateSuggestionStatus(context.Background(), "sug-1", "archived"); err == nil {
		t.Error("expected rejection of unknown status")
	}
}
