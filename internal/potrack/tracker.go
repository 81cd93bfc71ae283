package potrack

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/merchops/replenish/internal/domain"
	"github.com/merchops/replenish/internal/vendorperf"
	"github.com/shopspring/decimal"
)

// onTrackGraceDays: a received PO still counts as on track when it
// landed at most this many days late.
const onTrackGraceDays = 1.0

// CreateParams are the inputs for a new draft purchase order.
type CreateParams struct {
	PONumber             string          `json:"po_number"`
	VendorID             string          `json:"vendor_id"`
	VendorName           string          `json:"vendor_name"`
	SKU                  string          `json:"sku"`
	Quantity             int64           `json:"quantity"`
	CostPerUnit          decimal.Decimal `json:"cost_per_unit"`
	ExpectedLeadTimeDays int             `json:"expected_lead_time_days"`
	Notes                string          `json:"notes"`
}

// TrackingDetails is a purchase order with its derived timing fields.
// Pointer fields are nil when the underlying dates are missing.
type TrackingDetails struct {
	domain.PurchaseOrder
	DaysSinceOrder    *float64 `json:"days_since_order,omitempty"`
	DaysUntilExpected *float64 `json:"days_until_expected,omitempty"`
	ExpectedLeadTime  *float64 `json:"expected_lead_time,omitempty"`
	ActualLeadTime    *float64 `json:"actual_lead_time,omitempty"`
	LeadTimeVariance  *float64 `json:"lead_time_variance,omitempty"`
	IsOverdue         bool     `json:"is_overdue"`
	IsOnTrack         bool     `json:"is_on_track"`
}

// Summary aggregates a set of purchase orders.
type Summary struct {
	TotalPOs        int             `json:"total_pos"`
	DraftCount      int             `json:"draft_count"`
	OrderedCount    int             `json:"ordered_count"`
	ShippedCount    int             `json:"shipped_count"`
	ReceivedCount   int             `json:"received_count"`
	CancelledCount  int             `json:"cancelled_count"`
	OverdueCount    int             `json:"overdue_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AverageLeadTime *float64        `json:"average_lead_time,omitempty"`
}

// LeadTimeAccuracy reports how well delivery promises held up across
// received purchase orders.
type LeadTimeAccuracy struct {
	TotalOrders         int     `json:"total_orders"`
	OnTimeCount         int     `json:"on_time_count"`
	EarlyCount          int     `json:"early_count"`
	LateCount           int     `json:"late_count"`
	AccuracyPercentage  float64 `json:"accuracy_percentage"`
	AverageVarianceDays float64 `json:"average_variance_days"`
}

// NewPurchaseOrder builds a draft PO. The expected delivery date is
// projected from the declared lead time when one is given.
func NewPurchaseOrder(id string, params CreateParams, now time.Time) domain.PurchaseOrder {
	po := domain.PurchaseOrder{
		ID:          id,
		PONumber:    params.PONumber,
		VendorID:    params.VendorID,
		VendorName:  params.VendorName,
		SKU:         params.SKU,
		Quantity:    params.Quantity,
		CostPerUnit: params.CostPerUnit,
		TotalCost:   params.CostPerUnit.Mul(decimal.NewFromInt(params.Quantity)),
		Status:      domain.POStatusDraft,
		CreatedDate: now,
		Notes:       params.Notes,
	}
	if params.ExpectedLeadTimeDays > 0 {
		expected := now.AddDate(0, 0, params.ExpectedLeadTimeDays)
		po.ExpectedDeliveryDate = &expected
	}
	return po
}

// MarkOrdered moves a draft PO to ordered. The expected delivery date
// resolves to the explicit argument, then the PO's projection, then the
// order date itself.
func MarkOrdered(po domain.PurchaseOrder, orderedAt time.Time, expectedDelivery *time.Time) (domain.PurchaseOrder, error) {
	if !domain.CanTransition(po.Status, domain.POStatusOrdered) {
		return po, &domain.InvalidTransitionError{POID: po.ID, From: po.Status, To: domain.POStatusOrdered}
	}
	po.Status = domain.POStatusOrdered
	po.OrderedDate = &orderedAt
	switch {
	case expectedDelivery != nil:
		po.ExpectedDeliveryDate = expectedDelivery
	case po.ExpectedDeliveryDate == nil:
		po.ExpectedDeliveryDate = &orderedAt
	}
	return po, nil
}

// MarkShipped moves an ordered PO to shipped.
func MarkShipped(po domain.PurchaseOrder, shippedAt time.Time) (domain.PurchaseOrder, error) {
	if !domain.CanTransition(po.Status, domain.POStatusShipped) {
		return po, &domain.InvalidTransitionError{POID: po.ID, From: po.Status, To: domain.POStatusShipped}
	}
	po.Status = domain.POStatusShipped
	po.ShippedDate = &shippedAt
	return po, nil
}

// MarkReceived closes out an in-flight PO. Direct ordered -> received
// is legal; shipment confirmation is not always reported.
func MarkReceived(po domain.PurchaseOrder, receivedAt time.Time) (domain.PurchaseOrder, error) {
	if !domain.CanTransition(po.Status, domain.POStatusReceived) {
		return po, &domain.InvalidTransitionError{POID: po.ID, From: po.Status, To: domain.POStatusReceived}
	}
	po.Status = domain.POStatusReceived
	po.ActualDeliveryDate = &receivedAt
	return po, nil
}

// MarkCancelled cancels any pre-receipt PO and records the reason.
func MarkCancelled(po domain.PurchaseOrder, reason string) (domain.PurchaseOrder, error) {
	if !domain.CanTransition(po.Status, domain.POStatusCancelled) {
		return po, &domain.InvalidTransitionError{POID: po.ID, From: po.Status, To: domain.POStatusCancelled}
	}
	po.Status = domain.POStatusCancelled
	if reason != "" {
		if po.Notes != "" {
			po.Notes += "\n"
		}
		po.Notes += "Cancelled: " + reason
	}
	return po, nil
}

// Track derives the timing view of one PO as of now.
func Track(po domain.PurchaseOrder, now time.Time) TrackingDetails {
	details := TrackingDetails{PurchaseOrder: po}

	if po.OrderedDate != nil {
		since := vendorperf.CalculateLeadTime(*po.OrderedDate, now)
		details.DaysSinceOrder = &since
	}

	if po.ExpectedDeliveryDate != nil && po.Status != domain.POStatusReceived {
		until := vendorperf.CalculateLeadTime(now, *po.ExpectedDeliveryDate)
		details.DaysUntilExpected = &until
		details.IsOverdue = until < 0
	}

	if po.OrderedDate != nil && po.ExpectedDeliveryDate != nil {
		expected := vendorperf.CalculateLeadTime(*po.OrderedDate, *po.ExpectedDeliveryDate)
		details.ExpectedLeadTime = &expected
	}

	if po.OrderedDate != nil && po.ActualDeliveryDate != nil {
		actual := vendorperf.CalculateLeadTime(*po.OrderedDate, *po.ActualDeliveryDate)
		details.ActualLeadTime = &actual
		if details.ExpectedLeadTime != nil {
			variance := actual - *details.ExpectedLeadTime
			details.LeadTimeVariance = &variance
		}
	}

	switch po.Status {
	case domain.POStatusOrdered, domain.POStatusShipped:
		details.IsOnTrack = !details.IsOverdue
	case domain.POStatusReceived:
		details.IsOnTrack = details.LeadTimeVariance == nil || *details.LeadTimeVariance <= onTrackGraceDays
	}

	return details
}

// Summarize aggregates status counts, overdue count, total value and
// the mean actual lead time across received POs.
func Summarize(pos []domain.PurchaseOrder, now time.Time) Summary {
	summary := Summary{TotalPOs: len(pos), TotalValue: decimal.Zero}

	var leadTimes []float64
	for _, po := range pos {
		summary.TotalValue = summary.TotalValue.Add(po.TotalCost)

		switch po.Status {
		case domain.POStatusDraft:
			summary.DraftCount++
		case domain.POStatusOrdered:
			summary.OrderedCount++
		case domain.POStatusShipped:
			summary.ShippedCount++
		case domain.POStatusReceived:
			summary.ReceivedCount++
		case domain.POStatusCancelled:
			summary.CancelledCount++
		}

		details := Track(po, now)
		if details.IsOverdue {
			summary.OverdueCount++
		}
		if details.ActualLeadTime != nil {
			leadTimes = append(leadTimes, *details.ActualLeadTime)
		}
	}

	if len(leadTimes) > 0 {
		sum := 0.0
		for _, lt := range leadTimes {
			sum += lt
		}
		avg := math.Round(sum/float64(len(leadTimes))*10) / 10
		summary.AverageLeadTime = &avg
	}

	return summary
}

// OverduePOs filters to in-flight POs whose expected date has passed.
// Draft and terminal POs can never be overdue.
func OverduePOs(pos []domain.PurchaseOrder, now time.Time) []TrackingDetails {
	var overdue []TrackingDetails
	for _, po := range pos {
		if po.Status != domain.POStatusOrdered && po.Status != domain.POStatusShipped {
			continue
		}
		details := Track(po, now)
		if details.IsOverdue {
			overdue = append(overdue, details)
		}
	}
	return overdue
}

// ExpectedSoon returns in-flight POs due within the window, soonest
// first.
func ExpectedSoon(pos []domain.PurchaseOrder, windowDays int, now time.Time) []TrackingDetails {
	var soon []TrackingDetails
	for _, po := range pos {
		if po.Status != domain.POStatusOrdered && po.Status != domain.POStatusShipped {
			continue
		}
		details := Track(po, now)
		if details.DaysUntilExpected == nil {
			continue
		}
		if until := *details.DaysUntilExpected; until >= 0 && until <= float64(windowDays) {
			soon = append(soon, details)
		}
	}
	sort.SliceStable(soon, func(i, j int) bool {
		return *soon[i].DaysUntilExpected < *soon[j].DaysUntilExpected
	})
	return soon
}

// CalculateLeadTimeAccuracy classifies received POs by signed lead time
// variance: exactly zero is on time, negative is early, positive is
// late.
func CalculateLeadTimeAccuracy(pos []domain.PurchaseOrder, now time.Time) LeadTimeAccuracy {
	var accuracy LeadTimeAccuracy
	var variances []float64

	for _, po := range pos {
		if po.Status != domain.POStatusReceived {
			continue
		}
		accuracy.TotalOrders++

		details := Track(po, now)
		if details.LeadTimeVariance == nil {
			continue
		}
		variance := *details.LeadTimeVariance
		variances = append(variances, variance)
		switch {
		case variance == 0:
			accuracy.OnTimeCount++
		case variance < 0:
			accuracy.EarlyCount++
		default:
			accuracy.LateCount++
		}
	}

	if accuracy.TotalOrders > 0 {
		accuracy.AccuracyPercentage = math.Round(float64(accuracy.OnTimeCount) / float64(accuracy.TotalOrders) * 100)
	}
	if len(variances) > 0 {
		sum := 0.0
		for _, v := range variances {
			sum += v
		}
		accuracy.AverageVarianceDays = math.Round(sum/float64(len(variances))*10) / 10
	}

	return accuracy
}

// ExportCSV renders POs as a CSV document for dashboard download.
func ExportCSV(pos []domain.PurchaseOrder, now time.Time) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"PO Number", "Vendor", "SKU", "Quantity", "Cost Per Unit",
		"Total Cost", "Status", "Ordered Date", "Expected Delivery",
		"Actual Delivery", "Lead Time (days)", "Notes",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, po := range pos {
		details := Track(po, now)
		leadTime := ""
		if details.ActualLeadTime != nil {
			leadTime = fmt.Sprintf("%.1f", *details.ActualLeadTime)
		}
		row := []string{
			po.PONumber,
			po.VendorName,
			po.SKU,
			fmt.Sprintf("%d", po.Quantity),
			po.CostPerUnit.StringFixed(2),
			po.TotalCost.StringFixed(2),
			string(po.Status),
			formatDate(po.OrderedDate),
			formatDate(po.ExpectedDeliveryDate),
			formatDate(po.ActualDeliveryDate),
			leadTime,
			po.Notes,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row for %s: %w", po.PONumber, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
