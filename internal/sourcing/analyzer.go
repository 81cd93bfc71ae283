package sourcing

import (
	"fmt"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

// Decision is the analyzer's verdict for a blocked product.
type Decision string

const (
	DecisionSourceEmergency Decision = "source_emergency"
	DecisionWait            Decision = "wait"
	DecisionDiscontinue     Decision = "discontinue"
)

// RiskLevel grades an emergency sourcing option.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Approval thresholds: large benefits and steep unit premiums go to a
// human before any order is placed.
const (
	approvalNetBenefitThreshold     = 1000.0
	approvalCostDifferenceThreshold = 5.0

	// Demand below this is treated as none.
	minMeaningfulVelocity = 0.01
)

// Params describe the blocked product and its primary supply line.
type Params struct {
	SKU                 string          `json:"sku"`
	OnHand              int64           `json:"on_hand"`
	DailyVelocity       float64         `json:"daily_velocity"`
	PrimaryVendorID     string          `json:"primary_vendor_id"`
	PrimaryLeadTimeDays float64         `json:"primary_lead_time_days"`
	PrimaryCostPerUnit  decimal.Decimal `json:"primary_cost_per_unit"`
	UnitMargin          decimal.Decimal `json:"unit_margin"`
	MarginThresholdPct  float64         `json:"margin_threshold_pct"`
	MaxLeadTimeDays     float64         `json:"max_lead_time_days"`
	MinReliability      float64         `json:"min_reliability"`
}

// OptionAnalysis is the cost/benefit breakdown for one local vendor.
type OptionAnalysis struct {
	VendorID          string          `json:"vendor_id"`
	VendorName        string          `json:"vendor_name"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	LeadTimeDays      float64         `json:"lead_time_days"`
	Reliability       float64         `json:"reliability"`
	IncrementalCost   decimal.Decimal `json:"incremental_cost"`
	NetBenefit        decimal.Decimal `json:"net_benefit"`
	MarginAfterPct    float64         `json:"margin_after_pct"`
	CostDifference    decimal.Decimal `json:"cost_difference"`
	LeadTimeSavedDays float64         `json:"lead_time_saved_days"`
	RiskLevel         RiskLevel       `json:"risk_level"`
	Recommended       bool            `json:"recommended"`
}

// Result is the full sourcing analysis for one product.
type Result struct {
	SKU                   string           `json:"sku"`
	DaysUntilStockout     *float64         `json:"days_until_stockout,omitempty"`
	StockoutBeforePrimary bool             `json:"stockout_before_primary"`
	FeasibleSales         float64          `json:"feasible_sales_during_lead_time"`
	ExpectedLostProfit    decimal.Decimal  `json:"expected_lost_profit"`
	Options               []OptionAnalysis `json:"options"`
	Decision              Decision         `json:"decision"`
	RecommendedVendorID   string           `json:"recommended_vendor_id,omitempty"`
	NetBenefit            decimal.Decimal  `json:"net_benefit"`
	RiskLevel             RiskLevel        `json:"risk_level"`
	ApprovalRequired      bool             `json:"approval_required"`
	Summary               string           `json:"summary"`
}

// ExpectedLostProfit is the profit at risk while waiting out the
// primary vendor's lead time.
func ExpectedLostProfit(dailyVelocity, leadTimeDays float64, unitMargin decimal.Decimal) (lostProfit decimal.Decimal, feasibleSales float64) {
	feasibleSales = dailyVelocity * leadTimeDays
	return unitMargin.Mul(decimal.NewFromFloat(feasibleSales)), feasibleSales
}

// IncrementalCost is the premium paid for sourcing qty units locally
// instead of through the primary vendor.
func IncrementalCost(localCost, primaryCost decimal.Decimal, qty float64) decimal.Decimal {
	return localCost.Sub(primaryCost).Mul(decimal.NewFromFloat(qty))
}

// AssessRisk grades an option. Negative benefit or the combination of
// shaky reliability and a long wait pushes it to high.
func AssessRisk(netBenefit, incrementalCost decimal.Decimal, reliability, leadTimeSavedDays float64) RiskLevel {
	factors := 0
	if netBenefit.IsNegative() {
		factors++
	}
	if netBenefit.LessThan(incrementalCost.Mul(decimal.NewFromFloat(0.5))) {
		factors++
	}
	if reliability < 0.85 {
		factors++
	}
	if leadTimeSavedDays > 10 {
		factors++
	}

	switch {
	case netBenefit.IsNegative() || (reliability < 0.80 && leadTimeSavedDays > 15):
		return RiskHigh
	case factors >= 2 || reliability < 0.80 || leadTimeSavedDays > 15:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Analyze runs the full opportunity-cost analysis against the local
// vendor catalog. Pure: the caller supplies stock, demand and options.
func Analyze(params Params, options []domain.LocalVendorOption) Result {
	result := Result{
		SKU:                params.SKU,
		ExpectedLostProfit: decimal.Zero,
		NetBenefit:         decimal.Zero,
		RiskLevel:          RiskHigh,
	}

	// A product nobody buys is not worth expediting.
	if params.DailyVelocity < minMeaningfulVelocity {
		result.Decision = DecisionDiscontinue
		result.RiskLevel = RiskLow
		result.Summary = fmt.Sprintf("No meaningful demand for %s; recommend discontinuing rather than sourcing.", params.SKU)
		return result
	}

	daysUntilStockout := float64(params.OnHand) / params.DailyVelocity
	result.DaysUntilStockout = &daysUntilStockout
	result.StockoutBeforePrimary = daysUntilStockout < params.PrimaryLeadTimeDays

	result.ExpectedLostProfit, result.FeasibleSales = ExpectedLostProfit(params.DailyVelocity, params.PrimaryLeadTimeDays, params.UnitMargin)

	for _, option := range options {
		if params.MaxLeadTimeDays > 0 && option.LeadTimeDays > params.MaxLeadTimeDays {
			continue
		}
		if option.Reliability < params.MinReliability {
			continue
		}
		result.Options = append(result.Options, analyzeOption(params, option, result.ExpectedLostProfit, result.FeasibleSales))
	}

	// Cheapest recommended option wins; ties break on vendor id.
	var best *OptionAnalysis
	for i := range result.Options {
		opt := &result.Options[i]
		if !opt.Recommended {
			continue
		}
		if best == nil ||
			opt.CostPerUnit.LessThan(best.CostPerUnit) ||
			(opt.CostPerUnit.Equal(best.CostPerUnit) && opt.VendorID < best.VendorID) {
			best = opt
		}
	}

	if best != nil && result.StockoutBeforePrimary {
		result.Decision = DecisionSourceEmergency
		result.RecommendedVendorID = best.VendorID
		result.NetBenefit = best.NetBenefit
		result.RiskLevel = best.RiskLevel
		netBenefit, _ := best.NetBenefit.Float64()
		costDifference, _ := best.CostDifference.Float64()
		result.ApprovalRequired = netBenefit > approvalNetBenefitThreshold || costDifference > approvalCostDifferenceThreshold
		result.Summary = fmt.Sprintf(
			"Source %s from %s: net benefit %s, %0.0f days faster than primary.",
			params.SKU, best.VendorName, best.NetBenefit.StringFixed(2), best.LeadTimeSavedDays,
		)
		return result
	}

	result.Decision = DecisionWait
	result.RiskLevel = RiskLow
	if best != nil {
		result.Summary = fmt.Sprintf("Stock covers the primary lead time for %s; wait for the primary vendor.", params.SKU)
	} else {
		result.Summary = fmt.Sprintf("No local option clears the cost/benefit bar for %s; wait for the primary vendor.", params.SKU)
	}
	return result
}

func analyzeOption(params Params, option domain.LocalVendorOption, lostProfit decimal.Decimal, feasibleSales float64) OptionAnalysis {
	incremental := IncrementalCost(option.CostPerUnit, params.PrimaryCostPerUnit, feasibleSales)
	netBenefit := lostProfit.Sub(incremental)
	leadTimeSaved := params.PrimaryLeadTimeDays - option.LeadTimeDays

	// Per-unit margin left after paying the local premium, as a
	// percentage of the local unit cost.
	marginAfter := params.UnitMargin.Sub(option.CostPerUnit.Sub(params.PrimaryCostPerUnit))
	marginAfterPct := 0.0
	if option.CostPerUnit.IsPositive() && marginAfter.IsPositive() {
		pct, _ := marginAfter.Div(option.CostPerUnit).Float64()
		marginAfterPct = pct * 100
	}

	risk := AssessRisk(netBenefit, incremental, option.Reliability, leadTimeSaved)

	return OptionAnalysis{
		VendorID:          option.VendorID,
		VendorName:        option.VendorName,
		CostPerUnit:       option.CostPerUnit,
		LeadTimeDays:      option.LeadTimeDays,
		Reliability:       option.Reliability,
		IncrementalCost:   incremental,
		NetBenefit:        netBenefit,
		MarginAfterPct:    marginAfterPct,
		CostDifference:    option.CostPerUnit.Sub(params.PrimaryCostPerUnit),
		LeadTimeSavedDays: leadTimeSaved,
		RiskLevel:         risk,
		Recommended:       netBenefit.IsPositive() && marginAfterPct >= params.MarginThresholdPct && risk != RiskHigh,
	}
}
