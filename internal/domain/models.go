package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single line of a goods receipt. Immutable input.
type LineItem struct {
	ID            string          `json:"id" db:"id"`
	VariantID     string          `json:"variant_id" db:"variant_id"`
	Quantity      int64           `json:"quantity" db:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit" db:"weight_per_unit"`
}

// TotalWeight returns weight-per-unit times quantity.
func (li LineItem) TotalWeight() decimal.Decimal {
	return li.WeightPerUnit.Mul(decimal.NewFromInt(li.Quantity))
}

// Validate rejects malformed line items before any allocation runs.
func (li LineItem) Validate() error {
	if li.ID == "" || li.VariantID == "" {
		return &ValidationError{Entity: "line_item", ID: li.ID, Reason: "missing id or variant id"}
	}
	if li.Quantity <= 0 {
		return &ValidationError{Entity: "line_item", ID: li.ID, Reason: "quantity must be positive"}
	}
	if li.UnitCost.IsNegative() {
		return &ValidationError{Entity: "line_item", ID: li.ID, Reason: "unit cost must not be negative"}
	}
	if li.WeightPerUnit.IsNegative() {
		return &ValidationError{Entity: "line_item", ID: li.ID, Reason: "weight must not be negative"}
	}
	return nil
}

// CostDistribution is one line item's share of a shipment-level cost
// (freight or duty). Allocations across a receipt sum exactly to the
// distributed total.
type CostDistribution struct {
	LineItemID      string          `json:"line_item_id" db:"line_item_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" db:"allocated_amount"`
	AmountPerUnit   decimal.Decimal `json:"amount_per_unit" db:"amount_per_unit"`
}

// ReceiptCost is the full landed-cost breakdown for one line item.
// Invariant: TotalCost = UnitCost*QuantityReceived + AllocatedFreight + AllocatedDuty.
type ReceiptCost struct {
	LineItemID       string          `json:"line_item_id" db:"line_item_id"`
	VariantID        string          `json:"variant_id" db:"variant_id"`
	QuantityReceived int64           `json:"quantity_received" db:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	AllocatedFreight decimal.Decimal `json:"allocated_freight" db:"allocated_freight"`
	AllocatedDuty    decimal.Decimal `json:"allocated_duty" db:"allocated_duty"`
	TotalCost        decimal.Decimal `json:"total_cost" db:"total_cost"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit" db:"cost_per_unit"`
}

// ALCState is the current average landed cost position for a variant.
// Only the cost allocation engine mutates it, via weighted-average merge.
type ALCState struct {
	VariantID         string          `json:"variant_id" db:"variant_id"`
	AverageLandedCost decimal.Decimal `json:"average_landed_cost" db:"average_landed_cost"`
	OnHand            int64           `json:"on_hand" db:"on_hand"`
}

// ALCUpdate is the computed result of merging one receipt line into a
// variant's ALC state.
type ALCUpdate struct {
	VariantID      string          `json:"variant_id" db:"variant_id"`
	PreviousALC    decimal.Decimal `json:"previous_alc" db:"previous_alc"`
	NewALC         decimal.Decimal `json:"new_alc" db:"new_alc"`
	PreviousOnHand int64           `json:"previous_on_hand" db:"previous_on_hand"`
	NewOnHand      int64           `json:"new_on_hand" db:"new_on_hand"`
}

// CostHistoryRecord is an append-only audit entry for an ALC change.
type CostHistoryRecord struct {
	ID             string          `json:"id" db:"id"`
	VariantID      string          `json:"variant_id" db:"variant_id"`
	ReceiptID      string          `json:"receipt_id" db:"receipt_id"`
	PreviousALC    decimal.Decimal `json:"previous_alc" db:"previous_alc"`
	NewALC         decimal.Decimal `json:"new_alc" db:"new_alc"`
	PreviousOnHand int64           `json:"previous_on_hand" db:"previous_on_hand"`
	NewOnHand      int64           `json:"new_on_hand" db:"new_on_hand"`
	RecordedAt     time.Time       `json:"recorded_at" db:"recorded_at"`
}

// Vendor is a reference entity created outside this core.
type Vendor struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	ContactEmail string `json:"contact_email" db:"contact_email"`
}

// VendorOrderStatus is the coarse status of a historical vendor order.
type VendorOrderStatus string

const (
	VendorOrderOrdered   VendorOrderStatus = "ordered"
	VendorOrderDelivered VendorOrderStatus = "delivered"
	VendorOrderCancelled VendorOrderStatus = "cancelled"
)

// VendorOrder is one historical order placed with a vendor.
type VendorOrder struct {
	OrderID              string            `json:"order_id" db:"order_id"`
	VendorID             string            `json:"vendor_id" db:"vendor_id"`
	SKU                  string            `json:"sku" db:"sku"`
	Quantity             int64             `json:"quantity" db:"quantity"`
	CostPerUnit          decimal.Decimal   `json:"cost_per_unit" db:"cost_per_unit"`
	OrderDate            time.Time         `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate time.Time         `json:"expected_delivery_date" db:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time        `json:"actual_delivery_date,omitempty" db:"actual_delivery_date"`
	Status               VendorOrderStatus `json:"status" db:"status"`
}

// Completed reports whether the order has both an order and a delivery
// date, which is what performance aggregation counts.
func (o VendorOrder) Completed() bool {
	return !o.OrderDate.IsZero() && o.ActualDeliveryDate != nil
}

// VendorPerformanceMetrics is a derived per-vendor aggregate.
type VendorPerformanceMetrics struct {
	VendorID            string          `json:"vendor_id"`
	VendorName          string          `json:"vendor_name"`
	TotalOrders         int             `json:"total_orders"`
	CompletedOrders     int             `json:"completed_orders"`
	OnTimeDeliveries    int             `json:"on_time_deliveries"`
	LateDeliveries      int             `json:"late_deliveries"`
	AverageLeadTimeDays float64         `json:"average_lead_time_days"`
	LeadTimeVariance    float64         `json:"lead_time_variance"`
	ReliabilityScore    float64         `json:"reliability_score"`
	AverageCostPerUnit  decimal.Decimal `json:"average_cost_per_unit"`
	LastOrderDate       *time.Time      `json:"last_order_date,omitempty"`
}

// IssueSeverity grades a detected vendor issue.
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// VendorIssue is a detected problem with a vendor's track record.
type VendorIssue struct {
	VendorID  string        `json:"vendor_id"`
	IssueType string        `json:"issue_type"`
	Severity  IssueSeverity `json:"severity"`
	Detail    string        `json:"detail"`
}

// PurchaseOrder is the lifecycle-owned purchasing record. Status moves
// only through the transitions defined in status.go.
type PurchaseOrder struct {
	ID                   string          `json:"id" db:"id"`
	PONumber             string          `json:"po_number" db:"po_number"`
	VendorID             string          `json:"vendor_id" db:"vendor_id"`
	VendorName           string          `json:"vendor_name" db:"vendor_name"`
	SKU                  string          `json:"sku" db:"sku"`
	Quantity             int64           `json:"quantity" db:"quantity"`
	CostPerUnit          decimal.Decimal `json:"cost_per_unit" db:"cost_per_unit"`
	TotalCost            decimal.Decimal `json:"total_cost" db:"total_cost"`
	Status               POStatus        `json:"status" db:"status"`
	CreatedDate          time.Time       `json:"created_date" db:"created_date"`
	OrderedDate          *time.Time      `json:"ordered_date,omitempty" db:"ordered_date"`
	ShippedDate          *time.Time      `json:"shipped_date,omitempty" db:"shipped_date"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty" db:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time      `json:"actual_delivery_date,omitempty" db:"actual_delivery_date"`
	Notes                string          `json:"notes,omitempty" db:"notes"`
}

// SuggestionStatus tracks a reorder suggestion through review.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
	SuggestionOrdered  SuggestionStatus = "ordered"
)

// ReorderSuggestion is an append-only snapshot of one ROP calculation,
// kept for the approval workflow outside this core.
type ReorderSuggestion struct {
	ID              string           `json:"id" db:"id"`
	ProductID       string           `json:"product_id" db:"product_id"`
	VariantID       string           `json:"variant_id" db:"variant_id"`
	ReorderPoint    int64            `json:"reorder_point" db:"reorder_point"`
	SafetyStock     int64            `json:"safety_stock" db:"safety_stock"`
	RecommendedQty  int64            `json:"recommended_qty" db:"recommended_qty"`
	VendorID        string           `json:"vendor_id" db:"vendor_id"`
	EstimatedCost   decimal.Decimal  `json:"estimated_cost" db:"estimated_cost"`
	ConfidenceScore float64          `json:"confidence_score" db:"confidence_score"`
	Status          SuggestionStatus `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// DailySales is the sales quantity for one SKU on one day.
type DailySales struct {
	Day      time.Time `json:"day" db:"day"`
	Quantity int64     `json:"quantity" db:"quantity"`
}

// LocalVendorOption is a sourcing catalog entry used by the emergency
// sourcing analyzer.
type LocalVendorOption struct {
	VendorID     string          `json:"vendor_id" db:"vendor_id"`
	VendorName   string          `json:"vendor_name" db:"vendor_name"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit" db:"cost_per_unit"`
	LeadTimeDays float64         `json:"lead_time_days" db:"lead_time_days"`
	Reliability  float64         `json:"reliability" db:"reliability"`
	MinOrderQty  int64           `json:"min_order_qty" db:"min_order_qty"`
	IsLocal      bool            `json:"is_local" db:"is_local"`
}
