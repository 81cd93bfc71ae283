package rop

import (
	"math"
	"testing"
	"time"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func salesDay(n int, qty int64) domain.DailySales {
	return domain.DailySales{
		Day:      time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n),
		Quantity: qty,
	}
}

func TestCalculateVelocitySparseHistory(t *testing.T) {
	sales := []domain.DailySales{salesDay(0, 4), salesDay(3, 2), salesDay(9, 6)}

	stats := CalculateVelocity(sales, 30)

	approx(t, "daily velocity", stats.DailyVelocity, 0.4)
	if stats.OrderCount != 3 || stats.TotalQuantitySold != 12 {
		t.Errorf("counts = %d orders / %d units, want 3/12", stats.OrderCount, stats.TotalQuantitySold)
	}
	// Volatile demand: no low-variance bonus, just the order count bump.
	approx(t, "confidence", stats.ConfidenceScore, 0.73)
	if stats.DemandVariance < 2 {
		t.Errorf("demand variance = %v, expected volatile (>= 2)", stats.DemandVariance)
	}
}

func TestCalculateVelocityNoSalesNeverFails(t *testing.T) {
	stats := CalculateVelocity(nil, 30)

	approx(t, "daily velocity", stats.DailyVelocity, 0)
	approx(t, "demand variance", stats.DemandVariance, 0)
	// Floor plus the low-variance bonus.
	approx(t, "confidence", stats.ConfidenceScore, 0.9)
}

func TestCalculateVelocityDenseSteadyDemand(t *testing.T) {
	sales := make([]domain.DailySales, 0, 30)
	for i := 0; i < 30; i++ {
		sales = append(sales, salesDay(i, 3))
	}

	stats := CalculateVelocity(sales, 30)

	approx(t, "daily velocity", stats.DailyVelocity, 3)
	approx(t, "demand variance", stats.DemandVariance, 0)
	// 0.7 + 0.3 + 0.2 caps at 0.95.
	approx(t, "confidence", stats.ConfidenceScore, 0.95)
}

func TestZScoreLookup(t *testing.T) {
	cases := []struct {
		level float64
		want  float64
	}{
		{0.90, 1.28},
		{0.95, 1.645},
		{0.99, 2.33},
		{0.80, 1.645}, // unknown level falls back to 95%
	}
	for _, tc := range cases {
		approx(t, "z-score", ZScore(tc.level), tc.want)
	}
}

func TestSafetyStock(t *testing.T) {
	// ceil(1.645 × √9 × 2) = ceil(9.87) = 10
	if got := SafetyStock(9, 2, 0.95); got != 10 {
		t.Errorf("safety stock = %d, want 10", got)
	}
	if got := SafetyStock(0, 2, 0.95); got != 0 {
		t.Errorf("safety stock with zero lead time = %d, want 0", got)
	}
	if got := SafetyStock(9, 0, 0.95); got != 0 {
		t.Errorf("safety stock with steady demand = %d, want 0", got)
	}
}

func TestLeadTimeDemandRoundsUp(t *testing.T) {
	if got := LeadTimeDemand(3.2, 7); got != 23 {
		t.Errorf("lead time demand = %d, want 23", got)
	}
	if got := LeadTimeDemand(0, 7); got != 0 {
		t.Errorf("lead time demand with no velocity = %d, want 0", got)
	}
}

func TestRecommendedQuantity(t *testing.T) {
	// 50 − 20 + ceil(2×7) = 44
	if got := RecommendedQuantity(50, 20, 2, 7); got != 44 {
		t.Errorf("recommended qty = %d, want 44", got)
	}
	// Overstocked products never get a negative order.
	if got := RecommendedQuantity(50, 200, 2, 7); got != 0 {
		t.Errorf("recommended qty when overstocked = %d, want 0", got)
	}
}

func TestAdjustVelocity(t *testing.T) {
	adjusted, seasonal, promo := AdjustVelocity(2, 50, 25)
	approx(t, "seasonal factor", seasonal, 1.5)
	approx(t, "promotional factor", promo, 1.25)
	approx(t, "adjusted velocity", adjusted, 3.75)

	adjusted, _, _ = AdjustVelocity(2, -50, 0)
	approx(t, "downward adjustment", adjusted, 1)
}

func candidate(id, name string, cost float64, leadDays, reliability float64) VendorCandidate {
	return VendorCandidate{
		VendorID:     id,
		VendorName:   name,
		CostPerUnit:  decimal.NewFromFloat(cost),
		LeadTimeDays: leadDays,
		Reliability:  reliability,
	}
}

func TestSelectVendorBestScore(t *testing.T) {
	candidates := []VendorCandidate{
		candidate("v-primary", "Primary Supplier Co", 15.50, 14, 0.92),
		candidate("v-fast", "Fast Supply Inc", 18.75, 7, 0.88),
		candidate("v-budget", "Budget Parts Ltd", 12.25, 21, 0.85),
	}

	selected, ok := SelectVendor(candidates, "")
	if !ok {
		t.Fatal("expected a selection")
	}
	// Short lead time outweighs the price premium.
	if selected.VendorID != "v-fast" {
		t.Errorf("selected = %s, want v-fast", selected.VendorID)
	}
}

func TestSelectVendorPreferredWins(t *testing.T) {
	candidates := []VendorCandidate{
		candidate("v-fast", "Fast Supply Inc", 18.75, 7, 0.88),
		candidate("v-budget", "Budget Parts Ltd", 12.25, 21, 0.85),
	}

	selected, ok := SelectVendor(candidates, "v-budget")
	if !ok || selected.VendorID != "v-budget" {
		t.Errorf("selected = %s (%v), want preferred v-budget", selected.VendorID, ok)
	}

	// Unknown preferred id falls back to best score.
	selected, ok = SelectVendor(candidates, "v-missing")
	if !ok || selected.VendorID != "v-fast" {
		t.Errorf("selected = %s (%v), want v-fast fallback", selected.VendorID, ok)
	}
}

func TestSelectVendorEmpty(t *testing.T) {
	if _, ok := SelectVendor(nil, ""); ok {
		t.Error("expected no selection from empty candidate set")
	}
}
