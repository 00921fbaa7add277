package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifies the business event that drives a posting.
type EventKind string

// Supported event kinds.
const (
	EventKindInvoice EventKind = "invoice"
	EventKindCash    EventKind = "cash"
	EventKindRevenue EventKind = "revenue"
)

// EventKinds returns the supported kinds in posting priority order.
func EventKinds() []EventKind {
	return []EventKind{EventKindInvoice, EventKindCash, EventKindRevenue}
}

// Priority returns the same-instant ordering rank of the kind.
// Invoices are billed before cash settles them, and both come before revenue.
func (k EventKind) Priority() (int, bool) {
	switch k {
	case EventKindInvoice:
		return 0, true
	case EventKindCash:
		return 1, true
	case EventKindRevenue:
		return 2, true
	default:
		return 0, false
	}
}

// IsValid reports whether the kind is one of the supported kinds.
func (k EventKind) IsValid() bool {
	_, ok := k.Priority()
	return ok
}

// Event is a timestamped business event consumed once by a posting pass.
type Event struct {
	OccurredAt time.Time
	Kind       EventKind
	Key        string
	Amount     decimal.Decimal
}

// Postable reports whether the event carries a positive amount.
// Events with zero or negative amounts are skipped by the engine.
func (e Event) Postable() bool {
	return e.Amount.IsPositive()
}
