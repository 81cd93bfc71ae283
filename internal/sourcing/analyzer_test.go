package sourcing

import (
	"context"
	"testing"

	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

func baseParams() Params {
	return Params{
		SKU:                 "WIDGET-1",
		OnHand:              20,
		DailyVelocity:       5,
		PrimaryVendorID:     "v-primary",
		PrimaryLeadTimeDays: 10,
		PrimaryCostPerUnit:  decimal.NewFromInt(10),
		UnitMargin:          decimal.NewFromInt(10),
		MarginThresholdPct:  20,
	}
}

func localOption(id, name string, cost float64, leadDays, reliability float64) domain.LocalVendorOption {
	return domain.LocalVendorOption{
		VendorID:     id,
		VendorName:   name,
		CostPerUnit:  decimal.NewFromFloat(cost),
		LeadTimeDays: leadDays,
		Reliability:  reliability,
		IsLocal:      true,
	}
}

func TestExpectedLostProfit(t *testing.T) {
	lost, feasible := ExpectedLostProfit(5, 10, decimal.NewFromInt(10))
	if feasible != 50 {
		t.Errorf("feasible sales = %v, want 50", feasible)
	}
	if !lost.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected lost profit = %s, want 500", lost)
	}
}

func TestIncrementalCost(t *testing.T) {
	got := IncrementalCost(decimal.NewFromInt(12), decimal.NewFromInt(10), 50)
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("incremental cost = %s, want 100", got)
	}
}

func TestAssessRisk(t *testing.T) {
	cases := []struct {
		name        string
		netBenefit  int64
		incremental int64
		reliability float64
		saved       float64
		want        RiskLevel
	}{
		{"clean option", 400, 100, 0.95, 7, RiskLow},
		{"negative benefit", -50, 100, 0.95, 7, RiskHigh},
		{"shaky and slow", 100, 50, 0.75, 16, RiskHigh},
		{"thin benefit and low reliability", 40, 100, 0.82, 7, RiskMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AssessRisk(decimal.NewFromInt(tc.netBenefit), decimal.NewFromInt(tc.incremental), tc.reliability, tc.saved)
			if got != tc.want {
				t.Errorf("risk = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAnalyzeSourceEmergency(t *testing.T) {
	options := []domain.LocalVendorOption{
		localOption("v-local", "Local Fast Supply Co", 12, 3, 0.95),
		localOption("v-premium", "Premium Emergency Supply", 25, 2, 0.88),
	}

	result := Analyze(baseParams(), options)

	// 20 units at 5/day runs out in 4 days, well inside the 10 day
	// primary lead time.
	if result.DaysUntilStockout == nil || *result.DaysUntilStockout != 4 {
		t.Errorf("days until stockout = %v, want 4", result.DaysUntilStockout)
	}
	if !result.StockoutBeforePrimary {
		t.Error("expected stockout before primary delivery")
	}
	if result.Decision != DecisionSourceEmergency {
		t.Fatalf("decision = %s, want source_emergency", result.Decision)
	}
	if result.RecommendedVendorID != "v-local" {
		t.Errorf("recommended = %s, want v-local", result.RecommendedVendorID)
	}
	// 500 lost profit − 100 premium.
	if !result.NetBenefit.Equal(decimal.NewFromInt(400)) {
		t.Errorf("net benefit = %s, want 400", result.NetBenefit)
	}
	if result.RiskLevel != RiskLow || result.ApprovalRequired {
		t.Errorf("risk = %s approval = %v, want low risk without approval", result.RiskLevel, result.ApprovalRequired)
	}

	// The premium option loses money and is marked, not recommended.
	for _, opt := range result.Options {
		if opt.VendorID == "v-premium" {
			if opt.Recommended || !opt.NetBenefit.IsNegative() || opt.RiskLevel != RiskHigh {
				t.Errorf("premium option = %+v, want unrecommended high risk", opt)
			}
		}
	}
}

func TestAnalyzeWaitWhenStockCovers(t *testing.T) {
	params := baseParams()
	params.OnHand = 200 // 40 days of cover

	result := Analyze(params, []domain.LocalVendorOption{
		localOption("v-local", "Local Fast Supply Co", 12, 3, 0.95),
	})

	if result.StockoutBeforePrimary {
		t.Error("stock covers the lead time")
	}
	if result.Decision != DecisionWait {
		t.Errorf("decision = %s, want wait", result.Decision)
	}
	if result.RecommendedVendorID != "" {
		t.Errorf("recommended vendor = %s, want none", result.RecommendedVendorID)
	}
}

func TestAnalyzeDiscontinueWithoutDemand(t *testing.T) {
	params := baseParams()
	params.DailyVelocity = 0

	result := Analyze(params, nil)

	if result.Decision != DecisionDiscontinue {
		t.Errorf("decision = %s, want discontinue", result.Decision)
	}
	if result.DaysUntilStockout != nil {
		t.Errorf("days until stockout = %v, want unset", result.DaysUntilStockout)
	}
}

func TestAnalyzeCandidateConstraints(t *testing.T) {
	params := baseParams()
	params.MaxLeadTimeDays = 4
	params.MinReliability = 0.90

	result := Analyze(params, []domain.LocalVendorOption{
		localOption("v-slow", "Regional Supply Hub", 11, 5, 0.92),  // too slow
		localOption("v-shaky", "Quick Parts Express", 12, 2, 0.88), // too unreliable
		localOption("v-good", "Local Fast Supply Co", 12, 3, 0.95), // passes both
	})

	if len(result.Options) != 1 || result.Options[0].VendorID != "v-good" {
		t.Fatalf("options = %+v, want only v-good", result.Options)
	}
	if result.Decision != DecisionSourceEmergency || result.RecommendedVendorID != "v-good" {
		t.Errorf("decision = %s vendor = %s", result.Decision, result.RecommendedVendorID)
	}
}

func TestAnalyzeApprovalOnSteepPremium(t *testing.T) {
	result := Analyze(baseParams(), []domain.LocalVendorOption{
		localOption("v-steep", "Premium Local", 16, 3, 0.95),
	})

	if result.Decision != DecisionSourceEmergency {
		t.Fatalf("decision = %s, want source_emergency", result.Decision)
	}
	// $6 over the primary unit cost crosses the approval threshold.
	if !result.ApprovalRequired {
		t.Error("expected approval to be required")
	}
}

func TestAnalyzeCheapestRecommendedWins(t *testing.T) {
	result := Analyze(baseParams(), []domain.LocalVendorOption{
		localOption("v-dearer", "Local Fast Supply Co", 13, 3, 0.95),
		localOption("v-cheaper", "Regional Supply Hub", 11, 5, 0.92),
	})

	if result.RecommendedVendorID != "v-cheaper" {
		t.Errorf("recommended = %s, want v-cheaper", result.RecommendedVendorID)
	}
}

type fakeVendorCatalog struct {
	options []domain.LocalVendorOption
}

func (f *fakeVendorCatalog) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	return nil, nil
}

func (f *fakeVendorCatalog) ListVendorsForSKU(ctx context.Context, sku string) ([]domain.Vendor, error) {
	return nil, nil
}

func (f *fakeVendorCatalog) ListLocalVendorOptions(ctx context.Context, sku string) ([]domain.LocalVendorOption, error) {
	return f.options, nil
}

func TestServiceAppliesDefaultThreshold(t *testing.T) {
	svc := NewService(
		&fakeVendorCatalog{options: []domain.LocalVendorOption{
			localOption("v-local", "Local Fast Supply Co", 12, 3, 0.95),
		}},
		config.EngineConfig{MarginThreshold: 20},
	)

	params := baseParams()
	params.MarginThresholdPct = 0 // force the config default

	result, err := svc.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Decision != DecisionSourceEmergency {
		t.Errorf("decision = %s, want source_emergency", result.Decision)
	}
}

func TestServiceRejectsMissingSKU(t *testing.T) {
	svc := NewService(&fakeVendorCatalog{}, config.EngineConfig{})

	if _, err := svc.Analyze(context.Background(), Params{}); err == nil {
		t.Error("expected validation error for missing sku")
	}
}
