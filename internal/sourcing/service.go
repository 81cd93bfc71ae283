package sourcing

import (
	"context"
	"fmt"

	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

// Service resolves the local vendor catalog and runs the analysis.
type Service struct {
	vendors  repository.VendorRepository
	defaults config.EngineConfig
}

func NewService(vendors repository.VendorRepository, defaults config.EngineConfig) *Service {
	return &Service{vendors: vendors, defaults: defaults}
}

// Analyze loads the local options for the SKU and produces the
// sourcing verdict.
func (s *Service) Analyze(ctx context.Context, params Params) (*Result, error) {
	if params.SKU == "" {
		return nil, &domain.ValidationError{Entity: "sourcing_params", Reason: "sku is required"}
	}
	if params.DailyVelocity < 0 || params.PrimaryLeadTimeDays < 0 {
		return nil, &domain.ValidationError{Entity: "sourcing_params", ID: params.SKU, Reason: "velocity and lead time must not be negative"}
	}
	if params.MarginThresholdPct <= 0 {
		params.MarginThresholdPct = s.defaults.MarginThreshold
	}

	options, err := s.vendors.ListLocalVendorOptions(ctx, params.SKU)
	if err != nil {
		return nil, fmt.Errorf("list local vendor options for sku %s: %w", params.SKU, err)
	}

	result := Analyze(params, options)

	log.Info().
		Str("sku", params.SKU).
		Str("decision", string(result.Decision)).
		Str("risk", string(result.RiskLevel)).
		Bool("approval_required", result.ApprovalRequired).
		Msg("emergency sourcing analyzed")

	return &result, nil
}
