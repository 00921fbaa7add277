package domain

import (
	"errors"
	"fmt"
)

var (
	// Posting errors
	ErrUnsupportedEventKind = errors.New("unsupported event kind")
	ErrUnbalancedLedger     = errors.New("debits do not equal credits")
	ErrTooManyEvents        = errors.New("too many events")

	// Contract errors
	ErrInvalidContractID     = errors.New("invalid contract id")
	ErrContractAlreadyPosted = errors.New("contract already posted")
	ErrContractNotFound      = errors.New("contract not found")

	// Reconciliation errors
	ErrInvalidNature = errors.New("invalid account nature")

	// Feed errors
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)

// UnsupportedEventKindError reports an event whose kind is not invoice, cash or revenue.
type UnsupportedEventKindError struct {
	Kind EventKind
}

func (e *UnsupportedEventKindError) Error() string {
	return fmt.Sprintf("unsupported event kind: %q", string(e.Kind))
}

func (e *UnsupportedEventKindError) Unwrap() error {
	return ErrUnsupportedEventKind
}

// InvalidNatureError reports a nature name other than debit or credit.
type InvalidNatureError struct {
	Value string
}

func (e *InvalidNatureError) Error() string {
	return fmt.Sprintf("invalid account nature: %q", e.Value)
}

func (e *InvalidNatureError) Unwrap() error {
	return ErrInvalidNature
}
