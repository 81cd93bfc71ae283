package costing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReceiptResult is the outcome of processing one goods receipt.
type ReceiptResult struct {
	ReceiptID    string               `json:"receipt_id"`
	ReceiptCosts []domain.ReceiptCost `json:"receipt_costs"`
	ALCUpdates   []domain.ALCUpdate   `json:"alc_updates"`
}

// Service orchestrates receipt processing: distribute freight and duty,
// compute landed costs, merge per-variant ALC and append cost history.
// Nothing is written unless every step succeeds.
type Service struct {
	repo repository.InventoryRepository

	mu          sync.Mutex
	variantLock map[string]*sync.Mutex
}

func NewService(repo repository.InventoryRepository) *Service {
	return &Service{
		repo:        repo,
		variantLock: make(map[string]*sync.Mutex),
	}
}

// ProcessReceipt runs the full distribute -> cost -> ALC -> history
// pipeline for one receipt. Concurrent receipts touching the same
// variant are serialized so the read-modify-write of
// (averageLandedCost, onHand) never interleaves.
func (s *Service) ProcessReceipt(ctx context.Context, poID string, lineItems []domain.LineItem, totalFreight, totalDuty decimal.Decimal) (*ReceiptResult, error) {
	if len(lineItems) == 0 {
		return nil, &domain.ValidationError{Entity: "receipt", ID: poID, Reason: "no line items"}
	}
	if totalFreight.IsNegative() || totalDuty.IsNegative() {
		return nil, &domain.ValidationError{Entity: "receipt", ID: poID, Reason: "freight and duty must not be negative"}
	}
	for _, li := range lineItems {
		if err := li.Validate(); err != nil {
			return nil, err
		}
	}

	// Freight and duty are distributed independently; each must
	// reconcile against its own total.
	freightDist, err := DistributeByWeight(lineItems, totalFreight, "freight")
	if err != nil {
		return nil, err
	}
	dutyDist, err := DistributeByWeight(lineItems, totalDuty, "duty")
	if err != nil {
		return nil, err
	}

	receiptCosts := CalculateReceiptCosts(lineItems, freightDist, dutyDist)
	receiptID := uuid.NewString()

	variantIDs := uniqueVariantIDs(receiptCosts)
	unlock := s.lockVariants(variantIDs)
	defer unlock()

	// States are read under the variant locks and merged in order;
	// a variant appearing on multiple lines accumulates.
	states := make(map[string]domain.ALCState, len(variantIDs))
	for _, vid := range variantIDs {
		state, err := s.repo.GetALCState(ctx, vid)
		if err != nil {
			return nil, fmt.Errorf("load ALC state for variant %s: %w", vid, err)
		}
		if state == nil {
			state = &domain.ALCState{VariantID: vid, AverageLandedCost: decimal.Zero, OnHand: 0}
		}
		states[vid] = *state
	}

	now := time.Now().UTC()
	updates := make([]domain.ALCUpdate, 0, len(receiptCosts))
	history := make([]domain.CostHistoryRecord, 0, len(receiptCosts))
	for _, rc := range receiptCosts {
		update := MergeALC(states[rc.VariantID], rc.CostPerUnit, rc.QuantityReceived)
		states[rc.VariantID] = domain.ALCState{
			VariantID:         rc.VariantID,
			AverageLandedCost: update.NewALC,
			OnHand:            update.NewOnHand,
		}
		updates = append(updates, update)
		history = append(history, domain.CostHistoryRecord{
			ID:             uuid.NewString(),
			VariantID:      rc.VariantID,
			ReceiptID:      receiptID,
			PreviousALC:    update.PreviousALC,
			NewALC:         update.NewALC,
			PreviousOnHand: update.PreviousOnHand,
			NewOnHand:      update.NewOnHand,
			RecordedAt:     now,
		})
	}

	// Single transactional write: a failure here leaves no partial state
	// and the receipt can be retried as-is.
	if err := s.repo.ApplyReceipt(ctx, updates, history); err != nil {
		return nil, fmt.Errorf("apply receipt %s: %w", receiptID, err)
	}

	log.Info().
		Str("po_id", poID).
		Str("receipt_id", receiptID).
		Int("line_items", len(lineItems)).
		Int("variants", len(variantIDs)).
		Msg("receipt processed")

	return &ReceiptResult{
		ReceiptID:    receiptID,
		ReceiptCosts: receiptCosts,
		ALCUpdates:   updates,
	}, nil
}

// CostHistory returns the most recent audit records for a variant.
func (s *Service) CostHistory(ctx context.Context, variantID string, limit int) ([]domain.CostHistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetCostHistory(ctx, variantID, limit)
}

// lockVariants acquires the per-variant mutexes in sorted order so two
// receipts sharing variants cannot deadlock.
func (s *Service) lockVariants(variantIDs []string) func() {
	locks := make([]*sync.Mutex, 0, len(variantIDs))
	s.mu.Lock()
	for _, vid := range variantIDs {
		l, ok := s.variantLock[vid]
		if !ok {
			l = &sync.Mutex{}
			s.variantLock[vid] = l
		}
		locks = append(locks, l)
	}
	s.mu.Unlock()

	for _, l := range locks {
		l.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func uniqueVariantIDs(costs []domain.ReceiptCost) []string {
	seen := make(map[string]struct{}, len(costs))
	ids := make([]string, 0, len(costs))
	for _, rc := range costs {
		if _, ok := seen[rc.VariantID]; ok {
			continue
		}
		seen[rc.VariantID] = struct{}{}
		ids = append(ids, rc.VariantID)
	}
	sort.Strings(ids)
	return ids
}
