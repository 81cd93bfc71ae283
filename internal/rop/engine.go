package rop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/repository"
	"github.com/merchops/replenish/internal/vendorperf"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// PerformanceProvider supplies per-vendor history aggregates for the
// SKUs being replenished.
type PerformanceProvider interface {
	CandidatesForSKU(ctx context.Context, sku string) ([]vendorperf.VendorWithMetrics, error)
}

// Params is one replenishment calculation request. Zero values for the
// tunables fall back to the engine defaults.
type Params struct {
	ProductID             string            `json:"product_id"`
	VariantID             string            `json:"variant_id"`
	SKU                   string            `json:"sku"`
	Method                CalculationMethod `json:"method"`
	SeasonalAdjustmentPct float64           `json:"seasonal_adjustment_pct"`
	PromotionalUpliftPct  float64           `json:"promotional_uplift_pct"`
	HistoricalDays        int               `json:"historical_days"`
	ServiceLevel          float64           `json:"service_level"`
	BufferDays            int               `json:"buffer_days"`
	PreferredVendorID     string            `json:"preferred_vendor_id"`
}

// VendorRecommendation is the purchasing suggestion attached to a
// calculation: who to order from, at what cost, arriving when.
type VendorRecommendation struct {
	VendorID         string          `json:"vendor_id"`
	VendorName       string          `json:"vendor_name"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	EstimatedETADays float64         `json:"estimated_eta_days"`
}

// Result is one complete replenishment derivation. Recomputed on
// demand; the persisted suggestion is only a snapshot.
type Result struct {
	SuggestionID          string                `json:"suggestion_id"`
	ProductID             string                `json:"product_id"`
	VariantID             string                `json:"variant_id"`
	SKU                   string                `json:"sku"`
	Method                CalculationMethod     `json:"method"`
	Velocity              VelocityStats         `json:"velocity"`
	AdjustedDailyVelocity float64               `json:"adjusted_daily_velocity"`
	SeasonalityFactor     float64               `json:"seasonality_factor"`
	PromotionalFactor     float64               `json:"promotional_factor"`
	LeadTimeDays          float64               `json:"lead_time_days"`
	LeadTimeDemand        int64                 `json:"lead_time_demand"`
	SafetyStock           int64                 `json:"safety_stock"`
	ReorderPoint          int64                 `json:"reorder_point"`
	OnHand                int64                 `json:"on_hand"`
	RecommendedQuantity   int64                 `json:"recommended_quantity"`
	Vendor                *VendorRecommendation `json:"vendor,omitempty"`
	CalculatedAt          time.Time             `json:"calculated_at"`
}

// BatchResult carries one product's outcome in a batch run. A failed
// product reports its error here instead of aborting the batch.
type BatchResult struct {
	ProductID string  `json:"product_id"`
	Result    *Result `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Engine derives reorder points from sales history, vendor performance
// and current stock, and snapshots each derivation to the suggestions
// log.
type Engine struct {
	inventory   repository.InventoryRepository
	orders      repository.OrderHistoryRepository
	perf        PerformanceProvider
	suggestions repository.SuggestionRepository
	defaults    config.EngineConfig
	sem         *semaphore.Weighted
}

func NewEngine(
	inventory repository.InventoryRepository,
	orders repository.OrderHistoryRepository,
	perf PerformanceProvider,
	suggestions repository.SuggestionRepository,
	defaults config.EngineConfig,
) *Engine {
	workers := defaults.BatchWorkers
	if workers <= 0 {
		workers = 8
	}
	return &Engine{
		inventory:   inventory,
		orders:      orders,
		perf:        perf,
		suggestions: suggestions,
		defaults:    defaults,
		sem:         semaphore.NewWeighted(workers),
	}
}

// Calculate runs the full velocity -> lead time demand -> safety stock
// pipeline for one product and appends the suggestion snapshot.
func (e *Engine) Calculate(ctx context.Context, params Params) (*Result, error) {
	if params.ProductID == "" || params.VariantID == "" || params.SKU == "" {
		return nil, &domain.ValidationError{Entity: "rop_params", ID: params.ProductID, Reason: "product id, variant id and sku are required"}
	}
	if params.Method == "" {
		params.Method = MethodStandard
	}
	if !params.Method.Valid() {
		return nil, &domain.ValidationError{Entity: "rop_params", ID: params.ProductID, Reason: fmt.Sprintf("unknown calculation method %q", params.Method)}
	}
	if params.HistoricalDays <= 0 {
		params.HistoricalDays = e.defaults.HistoricalDays
	}
	if params.ServiceLevel <= 0 {
		params.ServiceLevel = e.defaults.ServiceLevel
	}
	if params.BufferDays <= 0 {
		params.BufferDays = e.defaults.ReorderBufferDay
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -params.HistoricalDays)
	sales, err := e.orders.GetDailySales(ctx, params.SKU, since)
	if err != nil {
		return nil, fmt.Errorf("load sales for sku %s: %w", params.SKU, err)
	}

	stats := CalculateVelocity(sales, params.HistoricalDays)
	adjusted, seasonalFactor, promotionalFactor := AdjustVelocity(stats.DailyVelocity, params.SeasonalAdjustmentPct, params.PromotionalUpliftPct)

	selected, haveVendor, err := e.selectVendor(ctx, params.SKU, params.PreferredVendorID)
	if err != nil {
		return nil, err
	}
	leadTimeDays := defaultLeadTimeDays
	if haveVendor {
		leadTimeDays = selected.LeadTimeDays
	}

	leadTimeDemand := LeadTimeDemand(adjusted, leadTimeDays)
	safetyStock := SafetyStock(leadTimeDays, stats.DemandVariance, params.ServiceLevel)
	reorderPoint := leadTimeDemand + safetyStock

	onHand := int64(0)
	state, err := e.inventory.GetALCState(ctx, params.VariantID)
	if err != nil {
		return nil, fmt.Errorf("load stock for variant %s: %w", params.VariantID, err)
	}
	if state != nil {
		onHand = state.OnHand
	}

	recommendedQty := RecommendedQuantity(reorderPoint, onHand, adjusted, params.BufferDays)

	result := &Result{
		SuggestionID:          uuid.NewString(),
		ProductID:             params.ProductID,
		VariantID:             params.VariantID,
		SKU:                   params.SKU,
		Method:                params.Method,
		Velocity:              stats,
		AdjustedDailyVelocity: adjusted,
		SeasonalityFactor:     seasonalFactor,
		PromotionalFactor:     promotionalFactor,
		LeadTimeDays:          leadTimeDays,
		LeadTimeDemand:        leadTimeDemand,
		SafetyStock:           safetyStock,
		ReorderPoint:          reorderPoint,
		OnHand:                onHand,
		RecommendedQuantity:   recommendedQty,
		CalculatedAt:          now,
	}

	suggestion := domain.ReorderSuggestion{
		ID:              result.SuggestionID,
		ProductID:       params.ProductID,
		VariantID:       params.VariantID,
		ReorderPoint:    reorderPoint,
		SafetyStock:     safetyStock,
		RecommendedQty:  recommendedQty,
		EstimatedCost:   decimal.Zero,
		ConfidenceScore: stats.ConfidenceScore,
		Status:          domain.SuggestionPending,
		CreatedAt:       now,
	}
	if haveVendor {
		estimatedCost := selected.CostPerUnit.Mul(decimal.NewFromInt(recommendedQty))
		result.Vendor = &VendorRecommendation{
			VendorID:         selected.VendorID,
			VendorName:       selected.VendorName,
			EstimatedCost:    estimatedCost,
			EstimatedETADays: selected.LeadTimeDays,
		}
		suggestion.VendorID = selected.VendorID
		suggestion.EstimatedCost = estimatedCost
	}

	if err := e.suggestions.Append(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("append suggestion for product %s: %w", params.ProductID, err)
	}

	log.Info().
		Str("product_id", params.ProductID).
		Str("sku", params.SKU).
		Str("method", string(params.Method)).
		Int64("reorder_point", reorderPoint).
		Int64("recommended_qty", recommendedQty).
		Float64("confidence", stats.ConfidenceScore).
		Msg("reorder point calculated")

	return result, nil
}

// BatchCalculate runs Calculate per product under a bounded semaphore.
// One bad product produces one failed entry, never a failed batch.
func (e *Engine) BatchCalculate(ctx context.Context, items []Params) []BatchResult {
	results := make([]BatchResult, len(items))
	var wg sync.WaitGroup
	for i, params := range items {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			results[i] = BatchResult{ProductID: params.ProductID, Error: err.Error()}
			continue
		}
		wg.Add(1)
		go func(i int, params Params) {
			defer wg.Done()
			defer e.sem.Release(1)
			res, err := e.Calculate(ctx, params)
			if err != nil {
				results[i] = BatchResult{ProductID: params.ProductID, Error: err.Error()}
				return
			}
			results[i] = BatchResult{ProductID: params.ProductID, Result: res}
		}(i, params)
	}
	wg.Wait()
	return results
}

// UpdateSuggestionStatus moves a logged suggestion through review.
func (e *Engine) UpdateSuggestionStatus(ctx context.Context, suggestionID string, status domain.SuggestionStatus) error {
	switch status {
	case domain.SuggestionPending, domain.SuggestionApproved, domain.SuggestionRejected, domain.SuggestionOrdered:
	default:
		return &domain.ValidationError{Entity: "suggestion", ID: suggestionID, Reason: fmt.Sprintf("unknown status %q", status)}
	}
	return e.suggestions.UpdateStatus(ctx, suggestionID, status)
}

// SuggestionsForProduct lists the logged snapshots for one product.
func (e *Engine) SuggestionsForProduct(ctx context.Context, productID string) ([]domain.ReorderSuggestion, error) {
	return e.suggestions.ListForProduct(ctx, productID)
}

// selectVendor resolves candidates from performance history. A SKU with
// no vendors is not an error: the calculation proceeds on catalog
// defaults with no recommendation attached.
func (e *Engine) selectVendor(ctx context.Context, sku, preferredVendorID string) (VendorCandidate, bool, error) {
	withMetrics, err := e.perf.CandidatesForSKU(ctx, sku)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return VendorCandidate{}, false, nil
		}
		return VendorCandidate{}, false, fmt.Errorf("load vendor candidates for sku %s: %w", sku, err)
	}

	candidates := make([]VendorCandidate, 0, len(withMetrics))
	for _, vm := range withMetrics {
		candidates = append(candidates, toCandidate(vm))
	}
	selected, ok := SelectVendor(candidates, preferredVendorID)
	return selected, ok, nil
}

// toCandidate resolves a vendor's effective figures, falling back to
// catalog defaults when there is no delivery history yet.
func toCandidate(vm vendorperf.VendorWithMetrics) VendorCandidate {
	c := VendorCandidate{
		VendorID:     vm.Vendor.ID,
		VendorName:   vm.Vendor.Name,
		CostPerUnit:  vm.Metrics.AverageCostPerUnit,
		LeadTimeDays: vm.Metrics.AverageLeadTimeDays,
		Reliability:  vm.Metrics.ReliabilityScore / 100,
	}
	if vm.Metrics.CompletedOrders == 0 {
		c.LeadTimeDays = defaultLeadTimeDays
		c.Reliability = defaultReliability
	}
	return c
}
