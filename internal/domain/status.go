package domain

import "fmt"

// POStatus is the closed purchase-order status enum.
type POStatus string

const (
	POStatusDraft     POStatus = "draft"
	POStatusOrdered   POStatus = "ordered"
	POStatusShipped   POStatus = "shipped"
	POStatusReceived  POStatus = "received"
	POStatusCancelled POStatus = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
func (s POStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusOrdered, POStatusShipped, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// poTransitions is the full transition table. Received is terminal:
// a received PO cannot be cancelled or moved anywhere else.
var poTransitions = map[POStatus][]POStatus{
	POStatusDraft:     {POStatusOrdered, POStatusCancelled},
	POStatusOrdered:   {POStatusShipped, POStatusReceived, POStatusCancelled},
	POStatusShipped:   {POStatusReceived, POStatusCancelled},
	POStatusReceived:  {},
	POStatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal PO transition.
func CanTransition(from, to POStatus) bool {
	for _, next := range poTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError names the PO, its current status and the
// attempted target so callers see exactly what was refused.
type InvalidTransitionError struct {
	POID string
	From POStatus
	To   POStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From == POStatusReceived && e.To == POStatusCancelled {
		return fmt.Sprintf("purchase order %s: cannot cancel received PO", e.POID)
	}
	return fmt.Sprintf("purchase order %s: cannot move to %s with status: %s", e.POID, e.To, e.From)
}

// NotFoundError marks a lookup miss so handlers can answer 404 instead
// of 500.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError is a fatal input error carrying the offending entity.
type ValidationError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.ID, e.Reason)
}
