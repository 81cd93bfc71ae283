package costing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeInventory struct {
	mu      sync.Mutex
	states  map[string]domain.ALCState
	history []domain.CostHistoryRecord
	failure error
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{states: make(map[string]domain.ALCState)}
}

func (f *fakeInventory) GetALCState(ctx context.Context, variantID string) (*domain.ALCState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[variantID]; ok {
		return &state, nil
	}
	return nil, nil
}

func (f *fakeInventory) ApplyReceipt(ctx context.Context, updates []domain.ALCUpdate, history []domain.CostHistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return f.failure
	}
	for _, u := range updates {
		f.states[u.VariantID] = domain.ALCState{
			VariantID:         u.VariantID,
			AverageLandedCost: u.NewALC,
			OnHand:            u.NewOnHand,
		}
	}
	f.history = append(f.history, history...)
	return nil
}

func (f *fakeInventory) GetCostHistory(ctx context.Context, variantID string, limit int) ([]domain.CostHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CostHistoryRecord
	for _, rec := range f.history {
		if rec.VariantID == variantID {
			out = append(out, rec)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func receiptLines() []domain.LineItem {
	return []domain.LineItem{
		line("li-1", "var-1", 10, 8, 5),
		line("li-2", "var-2", 10, 8, 15),
	}
}

func TestProcessReceiptEndToEnd(t *testing.T) {
	repo := newFakeInventory()
	svc := NewService(repo)

	result, err := svc.ProcessReceipt(context.Background(), "po-1", receiptLines(), decimal.NewFromInt(200), decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("ProcessReceipt: %v", err)
	}

	if result.ReceiptID == "" || len(result.ReceiptCosts) != 2 || len(result.ALCUpdates) != 2 {
		t.Fatalf("result = %+v", result)
	}

	// Line 1: 10×8 + 50 freight + 10 duty = 140, 14/unit.
	if !result.ReceiptCosts[0].CostPerUnit.Equal(decimal.NewFromInt(14)) {
		t.Errorf("line 1 cost per unit = %s, want 14", result.ReceiptCosts[0].CostPerUnit)
	}

	// Fresh variants start at the receipt cost.
	state := repo.states["var-1"]
	if !state.AverageLandedCost.Equal(decimal.NewFromInt(14)) || state.OnHand != 10 {
		t.Errorf("var-1 state = %+v", state)
	}

	// One audit record per line, all tied to the same receipt.
	if len(repo.history) != 2 {
		t.Fatalf("history = %d records, want 2", len(repo.history))
	}
	for _, rec := range repo.history {
		if rec.ReceiptID != result.ReceiptID {
			t.Errorf("history receipt id = %s, want %s", rec.ReceiptID, result.ReceiptID)
		}
	}
}

func TestProcessReceiptAllOrNothing(t *testing.T) {
	repo := newFakeInventory()
	repo.failure = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.ProcessReceipt(context.Background(), "po-1", receiptLines(), decimal.NewFromInt(200), decimal.NewFromInt(40))
	if err == nil {
		t.Fatal("expected failure to propagate")
	}

	// Nothing committed: the receipt can be retried as-is.
	if len(repo.states) != 0 || len(repo.history) != 0 {
		t.Errorf("partial state committed: %d states, %d history records", len(repo.states), len(repo.history))
	}

	repo.failure = nil
	if _, err := svc.ProcessReceipt(context.Background(), "po-1", receiptLines(), decimal.NewFromInt(200), decimal.NewFromInt(40)); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestProcessReceiptValidation(t *testing.T) {
	svc := NewService(newFakeInventory())
	ctx := context.Background()

	if _, err := svc.ProcessReceipt(ctx, "po-1", nil, decimal.Zero, decimal.Zero); err == nil {
		t.Error("expected rejection of empty receipt")
	}

	if _, err := svc.ProcessReceipt(ctx, "po-1", receiptLines(), decimal.NewFromInt(-1), decimal.Zero); err == nil {
		t.Error("expected rejection of negative freight")
	}

	bad := receiptLines()
	bad[0].Quantity = 0
	if _, err := svc.ProcessReceipt(ctx, "po-1", bad, decimal.NewFromInt(200), decimal.Zero); err == nil {
		t.Error("expected rejection of zero quantity line")
	}
}

func TestProcessReceiptZeroWeightFailsBeforeWrites(t *testing.T) {
	repo := newFakeInventory()
	svc := NewService(repo)

	items := []domain.LineItem{line("li-1", "var-1", 10, 8, 0)}
	_, err := svc.ProcessReceipt(context.Background(), "po-1", items, decimal.NewFromInt(200), decimal.Zero)

	var zeroWeight *ZeroWeightError
	if !errors.As(err, &zeroWeight) {
		t.Fatalf("err = %v, want ZeroWeightError", err)
	}
	if len(repo.states) != 0 {
		t.Error("state written despite distribution failure")
	}
}

// Concurrent receipts for the same variant must serialize their
// read-modify-write; the final on-hand count proves no update was lost.
func TestProcessReceiptConcurrentSameVariant(t *testing.T) {
	repo := newFakeInventory()
	svc := NewService(repo)

	const receipts = 20
	var wg sync.WaitGroup
	for i := 0; i < receipts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items := []domain.LineItem{line("li-1", "var-hot", 5, 10, 1)}
			if _, err := svc.ProcessReceipt(context.Background(), "po-x", items, decimal.NewFromInt(10), decimal.Zero); err != nil {
				t.Errorf("ProcessReceipt: %v", err)
			}
		}()
	}
	wg.Wait()

	state := repo.states["var-hot"]
	if state.OnHand != receipts*5 {
		t.Errorf("on hand = %d, want %d (lost update)", state.OnHand, receipts*5)
	}
	// Identical receipts leave the average exactly at the line cost:
	// 5 units at 10 with 10 freight and no duty is 12 per unit.
	if !state.AverageLandedCost.Equal(decimal.NewFromInt(12)) {
		t.Errorf("ALC = %s, want 12", state.AverageLandedCost)
	}
}

func TestCostHistoryLimit(t *testing.T) {
	repo := newFakeInventory()
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items := []domain.LineItem{line("li-1", "var-1", 1, 10, 1)}
		if _, err := svc.ProcessReceipt(ctx, "po-1", items, decimal.NewFromInt(1), decimal.Zero); err != nil {
			t.Fatalf("ProcessReceipt: %v", err)
		}
	}

	history, err := svc.CostHistory(ctx, "var-1", 2)
	if err != nil {
		t.Fatalf("CostHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history = %d records, want 2", len(history))
	}
}
