package rop

import (
	"math"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

// Fallbacks used when a vendor has no delivery history yet.
const (
	defaultLeadTimeDays = 14.0
	defaultReliability  = 0.8
)

// Vendor selection weights and normalizers. Lead times are scored
// against a 20 day ceiling, unit costs against a $25 ceiling.
const (
	selectWeightReliability = 0.4
	selectWeightLeadTime    = 0.3
	selectWeightCost        = 0.3
	leadTimeCeilingDays     = 20.0
	costCeiling             = 25.0
)

// CalculationMethod selects which velocity adjustments a calculation
// applies. All methods share the same downstream formula.
type CalculationMethod string

const (
	MethodStandard    CalculationMethod = "standard"
	MethodSeasonal    CalculationMethod = "seasonal"
	MethodPromotional CalculationMethod = "promotional"
	MethodEmergency   CalculationMethod = "emergency"
)

func (m CalculationMethod) Valid() bool {
	switch m {
	case MethodStandard, MethodSeasonal, MethodPromotional, MethodEmergency:
		return true
	}
	return false
}

// VelocityStats is the demand profile derived from a sales window.
// DemandVariance is the population standard deviation of per-day sales
// quantities around the daily velocity.
type VelocityStats struct {
	DailyVelocity     float64 `json:"daily_velocity"`
	OrderCount        int     `json:"order_count"`
	TotalQuantitySold int64   `json:"total_quantity_sold"`
	DemandVariance    float64 `json:"demand_variance"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

// VendorCandidate is one vendor considered for a replenishment order,
// with history-derived figures already resolved.
type VendorCandidate struct {
	VendorID     string          `json:"vendor_id"`
	VendorName   string          `json:"vendor_name"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	LeadTimeDays float64         `json:"lead_time_days"`
	Reliability  float64         `json:"reliability"` // 0..1
}

// CalculateVelocity derives the demand profile for one SKU. Sparse or
// empty history lowers the confidence score, it never fails: a product
// with no sales simply has zero velocity.
func CalculateVelocity(sales []domain.DailySales, historicalDays int) VelocityStats {
	if historicalDays <= 0 {
		historicalDays = 30
	}

	var total int64
	for _, day := range sales {
		total += day.Quantity
	}
	velocity := float64(total) / float64(historicalDays)

	// Spread of per-day quantities around the daily velocity.
	variance := 0.0
	if len(sales) > 0 {
		for _, day := range sales {
			diff := float64(day.Quantity) - velocity
			variance += diff * diff
		}
		variance /= float64(len(sales))
	}
	stdDev := math.Sqrt(variance)

	// More selling days raise confidence, volatile demand caps it.
	confidence := 0.7 + float64(len(sales))/100
	if stdDev < 2 {
		confidence += 0.2
	}
	confidence = math.Min(0.95, math.Max(0.5, confidence))

	return VelocityStats{
		DailyVelocity:     velocity,
		OrderCount:        len(sales),
		TotalQuantitySold: total,
		DemandVariance:    stdDev,
		ConfidenceScore:   confidence,
	}
}

// ZScore maps a target service level to its safety factor. Unknown
// levels fall back to the 95% factor.
func ZScore(serviceLevel float64) float64 {
	switch serviceLevel {
	case 0.90:
		return 1.28
	case 0.95:
		return 1.645
	case 0.99:
		return 2.33
	}
	return 1.645
}

// SafetyStock sizes the buffer to the service level and the demand
// spread over the lead time, rounded up to whole units.
func SafetyStock(leadTimeDays, demandStdDev, serviceLevel float64) int64 {
	if leadTimeDays <= 0 || demandStdDev <= 0 {
		return 0
	}
	return int64(math.Ceil(ZScore(serviceLevel) * math.Sqrt(leadTimeDays) * demandStdDev))
}

// LeadTimeDemand is the expected consumption while a replenishment
// order is in flight, rounded up to whole units.
func LeadTimeDemand(dailyVelocity, leadTimeDays float64) int64 {
	if dailyVelocity <= 0 || leadTimeDays <= 0 {
		return 0
	}
	return int64(math.Ceil(dailyVelocity * leadTimeDays))
}

// RecommendedQuantity covers the gap to the reorder point plus a
// velocity-sized buffer. Never negative: overstocked products get 0.
func RecommendedQuantity(reorderPoint, onHand int64, adjustedVelocity float64, bufferDays int) int64 {
	buffer := int64(math.Ceil(adjustedVelocity * float64(bufferDays)))
	qty := reorderPoint - onHand + buffer
	if qty < 0 {
		return 0
	}
	return qty
}

// AdjustVelocity applies the multiplicative seasonal and promotional
// factors. Percentages are relative: +25 means a 1.25 factor.
func AdjustVelocity(velocity, seasonalAdjustmentPct, promotionalUpliftPct float64) (adjusted, seasonalFactor, promotionalFactor float64) {
	seasonalFactor = 1 + seasonalAdjustmentPct/100
	promotionalFactor = 1 + promotionalUpliftPct/100
	return velocity * seasonalFactor * promotionalFactor, seasonalFactor, promotionalFactor
}

// SelectVendor picks the preferred vendor when set and present,
// otherwise the candidate with the best weighted score of reliability,
// lead time and cost. Returns false only for an empty candidate set.
func SelectVendor(candidates []VendorCandidate, preferredVendorID string) (VendorCandidate, bool) {
	if len(candidates) == 0 {
		return VendorCandidate{}, false
	}

	if preferredVendorID != "" {
		for _, c := range candidates {
			if c.VendorID == preferredVendorID {
				return c, true
			}
		}
	}

	best := candidates[0]
	bestScore := candidateScore(best)
	for _, c := range candidates[1:] {
		if score := candidateScore(c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, true
}

func candidateScore(c VendorCandidate) float64 {
	cost, _ := c.CostPerUnit.Float64()
	return c.Reliability*selectWeightReliability +
		(leadTimeCeilingDays-c.LeadTimeDays)/leadTimeCeilingDays*selectWeightLeadTime +
		(costCeiling-cost)/costCeiling*selectWeightCost
}
