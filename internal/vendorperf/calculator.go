package vendorperf

import (
	"math"
	"sort"
	"time"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// DefaultGraceDays is the delivery grace window: an order arriving
	// within this many days after the expected date still counts on time.
	DefaultGraceDays = 1

	hoursPerDay = 24.0

	lowReliabilityThreshold = 50.0
	varianceRatioThreshold  = 0.3
	inactiveAfterDays       = 90
)

// Scoring weights: reliability dominates, lead time and cost split the rest.
const (
	weightReliability = 0.50
	weightLeadTime    = 0.25
	weightCost        = 0.25
)

// VendorWithMetrics pairs a vendor with its computed performance.
type VendorWithMetrics struct {
	Vendor  domain.Vendor                   `json:"vendor"`
	Metrics domain.VendorPerformanceMetrics `json:"metrics"`
}

// ComparedVendor is one row of a per-SKU vendor comparison.
type ComparedVendor struct {
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`
	TotalScore float64 `json:"total_score"`
	Preferred  bool    `json:"preferred"`
}

// Comparison ranks candidate vendors for a SKU. Exactly one vendor
// carries the preferred flag.
type Comparison struct {
	SKU               string           `json:"sku"`
	LeadTimeBenchmark float64          `json:"lead_time_benchmark"`
	CostBenchmark     float64          `json:"cost_benchmark"`
	PreferredVendorID string           `json:"preferred_vendor_id"`
	Vendors           []ComparedVendor `json:"vendors"`
}

// RankedVendor is one row of a stable overall ranking, 1-indexed.
type RankedVendor struct {
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// CalculateLeadTime returns the elapsed time between order placement
// and delivery in fractional days.
func CalculateLeadTime(orderDate, deliveryDate time.Time) float64 {
	return deliveryDate.Sub(orderDate).Hours() / hoursPerDay
}

// IsOnTimeDelivery reports whether actual falls within the expected
// date plus the grace window.
func IsOnTimeDelivery(expected, actual time.Time, graceDays int) bool {
	deadline := expected.Add(time.Duration(graceDays) * 24 * time.Hour)
	return !actual.After(deadline)
}

// CalculatePerformance aggregates a vendor's order history. Only
// orders with both an order date and an actual delivery date count as
// completed; everything else contributes to totals only.
func CalculatePerformance(vendor domain.Vendor, orders []domain.VendorOrder, graceDays int) domain.VendorPerformanceMetrics {
	metrics := domain.VendorPerformanceMetrics{
		VendorID:           vendor.ID,
		VendorName:         vendor.Name,
		TotalOrders:        len(orders),
		AverageCostPerUnit: decimal.Zero,
	}

	var leadTimes []float64
	costTotal := decimal.Zero
	costCount := int64(0)
	for _, o := range orders {
		if !o.OrderDate.IsZero() {
			if metrics.LastOrderDate == nil || o.OrderDate.After(*metrics.LastOrderDate) {
				d := o.OrderDate
				metrics.LastOrderDate = &d
			}
		}
		if !o.Completed() {
			continue
		}
		metrics.CompletedOrders++
		leadTimes = append(leadTimes, CalculateLeadTime(o.OrderDate, *o.ActualDeliveryDate))
		if IsOnTimeDelivery(o.ExpectedDeliveryDate, *o.ActualDeliveryDate, graceDays) {
			metrics.OnTimeDeliveries++
		} else {
			metrics.LateDeliveries++
		}
		costTotal = costTotal.Add(o.CostPerUnit)
		costCount++
	}

	if metrics.CompletedOrders == 0 {
		return metrics
	}

	metrics.ReliabilityScore = float64(metrics.OnTimeDeliveries) / float64(metrics.CompletedOrders) * 100
	metrics.AverageLeadTimeDays = mean(leadTimes)
	metrics.LeadTimeVariance = populationStdDev(leadTimes, metrics.AverageLeadTimeDays)
	metrics.AverageCostPerUnit = costTotal.DivRound(decimal.NewFromInt(costCount), 18)
	return metrics
}

// CalculateVendorScore produces the 0..100 composite: reliability 50%,
// lead time vs benchmark 25%, cost vs benchmark 25%. Beating a
// benchmark earns proportionally more than matching it; doubling it
// earns nothing.
func CalculateVendorScore(m domain.VendorPerformanceMetrics, leadTimeBenchmark, costBenchmark float64) float64 {
	cost, _ := m.AverageCostPerUnit.Float64()
	score := weightReliability*m.ReliabilityScore +
		weightLeadTime*benchmarkScore(m.AverageLeadTimeDays, leadTimeBenchmark) +
		weightCost*benchmarkScore(cost, costBenchmark)
	return clamp(score, 0, 100)
}

// benchmarkScore maps actual/benchmark linearly: at benchmark -> 100,
// at double the benchmark -> 0, below benchmark -> above 100.
func benchmarkScore(actual, benchmark float64) float64 {
	if benchmark <= 0 {
		return 100
	}
	return math.Max(0, 2-actual/benchmark) * 100
}

// CompareVendorsForSKU scores every candidate against the benchmarks
// and flags the single preferred vendor. Zero benchmarks are replaced
// by the candidate means so a comparison always has a reference point.
func CompareVendorsForSKU(sku string, candidates []VendorWithMetrics, leadTimeBenchmark, costBenchmark float64) Comparison {
	if leadTimeBenchmark <= 0 {
		leadTimeBenchmark = meanLeadTime(candidates)
	}
	if costBenchmark <= 0 {
		costBenchmark = meanCost(candidates)
	}

	comparison := Comparison{
		SKU:               sku,
		LeadTimeBenchmark: leadTimeBenchmark,
		CostBenchmark:     costBenchmark,
	}

	bestIdx := -1
	for i, c := range candidates {
		score := CalculateVendorScore(c.Metrics, leadTimeBenchmark, costBenchmark)
		comparison.Vendors = append(comparison.Vendors, ComparedVendor{
			VendorID:   c.Vendor.ID,
			VendorName: c.Vendor.Name,
			TotalScore: score,
		})
		if bestIdx == -1 ||
			score > comparison.Vendors[bestIdx].TotalScore ||
			(score == comparison.Vendors[bestIdx].TotalScore && c.Vendor.ID < comparison.Vendors[bestIdx].VendorID) {
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		comparison.Vendors[bestIdx].Preferred = true
		comparison.PreferredVendorID = comparison.Vendors[bestIdx].VendorID
	}
	return comparison
}

// RankVendors sorts vendors by composite score, descending, against
// benchmarks computed as the candidate means. Ties break on vendor id
// so the same input always produces the same order.
func RankVendors(candidates []VendorWithMetrics) []RankedVendor {
	leadTimeBenchmark := meanLeadTime(candidates)
	costBenchmark := meanCost(candidates)

	ranked := make([]RankedVendor, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedVendor{
			VendorID:   c.Vendor.ID,
			VendorName: c.Vendor.Name,
			Score:      CalculateVendorScore(c.Metrics, leadTimeBenchmark, costBenchmark),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].VendorID < ranked[j].VendorID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// IdentifyVendorIssues flags reliability, variance and inactivity
// problems. Multiple issues can co-occur.
func IdentifyVendorIssues(m domain.VendorPerformanceMetrics, now time.Time) []domain.VendorIssue {
	var issues []domain.VendorIssue

	if m.CompletedOrders > 0 && m.ReliabilityScore < lowReliabilityThreshold {
		issues = append(issues, domain.VendorIssue{
			VendorID:  m.VendorID,
			IssueType: "low_reliability",
			Severity:  domain.SeverityHigh,
			Detail:    "on-time delivery rate below 50%",
		})
	}
	if m.AverageLeadTimeDays > 0 && m.LeadTimeVariance > varianceRatioThreshold*m.AverageLeadTimeDays {
		issues = append(issues, domain.VendorIssue{
			VendorID:  m.VendorID,
			IssueType: "high_variance",
			Severity:  domain.SeverityMedium,
			Detail:    "lead time variance exceeds 30% of average lead time",
		})
	}
	if m.LastOrderDate != nil && now.Sub(*m.LastOrderDate) > inactiveAfterDays*24*time.Hour {
		issues = append(issues, domain.VendorIssue{
			VendorID:  m.VendorID,
			IssueType: "inactive",
			Severity:  domain.SeverityLow,
			Detail:    "no orders placed in more than 90 days",
		})
	}
	return issues
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func meanLeadTime(candidates []VendorWithMetrics) float64 {
	values := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		values = append(values, c.Metrics.AverageLeadTimeDays)
	}
	return mean(values)
}

func meanCost(candidates []VendorWithMetrics) float64 {
	values := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		cost, _ := c.Metrics.AverageCostPerUnit.Float64()
		values = append(values, cost)
	}
	return mean(values)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
