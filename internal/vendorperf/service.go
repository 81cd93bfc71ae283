package vendorperf

import (
	"context"
	"fmt"
	"time"

	"github.com/merchops/replenish/internal/cache"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

// Service computes vendor performance on demand, with a cache in front
// of the order-history walk. Cache failures degrade to recomputation,
// never to an error.
type Service struct {
	vendors   repository.VendorRepository
	orders    repository.OrderHistoryRepository
	metrics   cache.VendorMetricsCache
	graceDays int
}

func NewService(vendors repository.VendorRepository, orders repository.OrderHistoryRepository, metrics cache.VendorMetricsCache, graceDays int) *Service {
	if graceDays < 0 {
		graceDays = DefaultGraceDays
	}
	return &Service{
		vendors:   vendors,
		orders:    orders,
		metrics:   metrics,
		graceDays: graceDays,
	}
}

// VendorPerformance returns the aggregate metrics for one vendor.
func (s *Service) VendorPerformance(ctx context.Context, vendorID string) (*domain.VendorPerformanceMetrics, error) {
	cached, hit, err := s.metrics.GetMetrics(ctx, vendorID)
	if err != nil {
		log.Warn().Err(err).Str("vendor_id", vendorID).Msg("vendor metrics cache read failed")
	}
	if hit {
		return cached, nil
	}

	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("load vendor %s: %w", vendorID, err)
	}
	if vendor == nil {
		return nil, &domain.NotFoundError{Entity: "vendor", ID: vendorID}
	}

	orders, err := s.orders.GetVendorOrders(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("load orders for vendor %s: %w", vendorID, err)
	}

	computed := CalculatePerformance(*vendor, orders, s.graceDays)
	if err := s.metrics.SetMetrics(ctx, computed); err != nil {
		log.Warn().Err(err).Str("vendor_id", vendorID).Msg("vendor metrics cache write failed")
	}
	return &computed, nil
}

// CompareVendors builds the per-SKU comparison. Zero benchmarks fall
// back to the candidate means.
func (s *Service) CompareVendors(ctx context.Context, sku string, leadTimeBenchmark, costBenchmark float64) (*Comparison, error) {
	candidates, err := s.CandidatesForSKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	comparison := CompareVendorsForSKU(sku, candidates, leadTimeBenchmark, costBenchmark)
	return &comparison, nil
}

// RankVendorsForSKU returns the stable composite-score ranking of every
// vendor that supplies the SKU.
func (s *Service) RankVendorsForSKU(ctx context.Context, sku string) ([]RankedVendor, error) {
	candidates, err := s.CandidatesForSKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return RankVendors(candidates), nil
}

// VendorIssues runs the issue detectors against a vendor's current
// metrics.
func (s *Service) VendorIssues(ctx context.Context, vendorID string) ([]domain.VendorIssue, error) {
	metrics, err := s.VendorPerformance(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return IdentifyVendorIssues(*metrics, time.Now().UTC()), nil
}

// InvalidateVendor drops the cached metrics after new history lands.
func (s *Service) InvalidateVendor(ctx context.Context, vendorID string) {
	if err := s.metrics.InvalidateMetrics(ctx, vendorID); err != nil {
		log.Warn().Err(err).Str("vendor_id", vendorID).Msg("vendor metrics cache invalidation failed")
	}
}

// CandidatesForSKU pairs every vendor supplying the SKU with its
// current metrics. The replenishment engine consumes this directly.
func (s *Service) CandidatesForSKU(ctx context.Context, sku string) ([]VendorWithMetrics, error) {
	vendors, err := s.vendors.ListVendorsForSKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("list vendors for sku %s: %w", sku, err)
	}
	if len(vendors) == 0 {
		return nil, &domain.NotFoundError{Entity: "vendors for sku", ID: sku}
	}

	candidates := make([]VendorWithMetrics, 0, len(vendors))
	for _, v := range vendors {
		metrics, err := s.VendorPerformance(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, VendorWithMetrics{Vendor: v, Metrics: *metrics})
	}
	return candidates, nil
}
