package costing

import (
	"fmt"

	"github.com/merchops/replenish/internal/domain"
	"github.com/shopspring/decimal"
)

// divPrecision is the number of decimal digits kept on every internal
// division. Currency rounding happens only at the presentation boundary.
const divPrecision = 18

// ZeroWeightError is returned when a shipment cost cannot be
// distributed because no line item contributes weight.
type ZeroWeightError struct {
	Kind      string // "freight" or "duty"
	LineItems int
}

func (e *ZeroWeightError) Error() string {
	return fmt.Sprintf("cannot distribute %s: total weight across %d line items is zero", e.Kind, e.LineItems)
}

// DistributeByWeight allocates a shipment-level cost (freight or duty)
// across line items proportionally to weight×quantity. The last line
// absorbs the rounding remainder so the allocations sum exactly to the
// input total. kind names the cost in errors.
func DistributeByWeight(lineItems []domain.LineItem, total decimal.Decimal, kind string) ([]domain.CostDistribution, error) {
	totalWeight := decimal.Zero
	for _, li := range lineItems {
		totalWeight = totalWeight.Add(li.TotalWeight())
	}
	if totalWeight.IsZero() {
		return nil, &ZeroWeightError{Kind: kind, LineItems: len(lineItems)}
	}

	dists := make([]domain.CostDistribution, 0, len(lineItems))
	allocated := decimal.Zero
	for i, li := range lineItems {
		var amount decimal.Decimal
		if i == len(lineItems)-1 {
			amount = total.Sub(allocated)
		} else {
			amount = total.Mul(li.TotalWeight()).DivRound(totalWeight, divPrecision)
			allocated = allocated.Add(amount)
		}
		dists = append(dists, domain.CostDistribution{
			LineItemID:      li.ID,
			AllocatedAmount: amount,
			AmountPerUnit:   amount.DivRound(decimal.NewFromInt(li.Quantity), divPrecision),
		})
	}
	return dists, nil
}

// CalculateReceiptCosts joins line items with their freight and duty
// allocations. A line item without a matching allocation gets zero
// rather than an error: partial receipts are valid.
func CalculateReceiptCosts(lineItems []domain.LineItem, freight, duty []domain.CostDistribution) []domain.ReceiptCost {
	freightByLine := make(map[string]decimal.Decimal, len(freight))
	for _, d := range freight {
		freightByLine[d.LineItemID] = d.AllocatedAmount
	}
	dutyByLine := make(map[string]decimal.Decimal, len(duty))
	for _, d := range duty {
		dutyByLine[d.LineItemID] = d.AllocatedAmount
	}

	costs := make([]domain.ReceiptCost, 0, len(lineItems))
	for _, li := range lineItems {
		qty := decimal.NewFromInt(li.Quantity)
		allocatedFreight := freightByLine[li.ID]
		allocatedDuty := dutyByLine[li.ID]
		totalCost := li.UnitCost.Mul(qty).Add(allocatedFreight).Add(allocatedDuty)
		costs = append(costs, domain.ReceiptCost{
			LineItemID:       li.ID,
			VariantID:        li.VariantID,
			QuantityReceived: li.Quantity,
			UnitCost:         li.UnitCost,
			AllocatedFreight: allocatedFreight,
			AllocatedDuty:    allocatedDuty,
			TotalCost:        totalCost,
			CostPerUnit:      totalCost.DivRound(qty, divPrecision),
		})
	}
	return costs
}

// MergeALC folds one receipt line into a variant's ALC state with a
// weighted average. A zero combined quantity is not an error: the new
// ALC is simply the receipt cost.
//
// newALC = (prevALC×prevOnHand + costPerUnit×qty) / (prevOnHand+qty)
func MergeALC(prev domain.ALCState, costPerUnit decimal.Decimal, qty int64) domain.ALCUpdate {
	newOnHand := prev.OnHand + qty

	var newALC decimal.Decimal
	if newOnHand == 0 || prev.OnHand == 0 {
		newALC = costPerUnit
	} else {
		prevQty := decimal.NewFromInt(prev.OnHand)
		newQty := decimal.NewFromInt(qty)
		numerator := prev.AverageLandedCost.Mul(prevQty).Add(costPerUnit.Mul(newQty))
		newALC = numerator.DivRound(decimal.NewFromInt(newOnHand), divPrecision)
	}

	return domain.ALCUpdate{
		VariantID:      prev.VariantID,
		PreviousALC:    prev.AverageLandedCost,
		NewALC:         newALC,
		PreviousOnHand: prev.OnHand,
		NewOnHand:      newOnHand,
	}
}
