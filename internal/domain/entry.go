package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a single balanced posting: Amount is debited to Debit and credited to Credit.
type JournalEntry struct {
	EventAt   time.Time
	Debit     Account
	Credit    Account
	EventKind EventKind
	EventKey  string
	Amount    decimal.Decimal
}

// PostedEntry is a journal entry persisted for a contract.
type PostedEntry struct {
	CreatedAt  time.Time
	ID         string
	ContractID string
	Entry      JournalEntry
	Sequence   int64
}
