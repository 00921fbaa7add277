package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountBalance is one line of a trial balance.
type AccountBalance struct {
	Account Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Net     decimal.Decimal
}

// TrialBalance holds per-account totals sorted by account identifier.
type TrialBalance []AccountBalance

// Lookup returns the balance line for account.
func (tb TrialBalance) Lookup(account Account) (AccountBalance, bool) {
	i := sort.Search(len(tb), func(i int) bool { return tb[i].Account >= account })
	if i < len(tb) && tb[i].Account == account {
		return tb[i], true
	}
	return AccountBalance{}, false
}

// Totals holds the sums of all debits and all credits of an entry set.
type Totals struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Balanced reports whether debits equal credits.
func (t Totals) Balanced() bool {
	return t.Debits.Equal(t.Credits)
}

// Position is the standing of a contract after a posting pass.
type Position struct {
	Billed            decimal.Decimal
	Collected         decimal.Decimal
	Recognized        decimal.Decimal
	ContractAsset     decimal.Decimal
	ContractLiability decimal.Decimal
	Receivable        decimal.Decimal
}

// ReconciliationInput is one line of an external ledger feed.
type ReconciliationInput struct {
	EntryType string
	Amount    decimal.Decimal
}

// ReconciliationLine rolls one account forward from opening to closing.
type ReconciliationLine struct {
	EntryType string
	Nature    Nature
	Opening   decimal.Decimal
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Closing   decimal.Decimal
}

// Reconciliation holds roll-forward lines sorted by entry type.
type Reconciliation []ReconciliationLine

// Lookup returns the line for entryType.
func (r Reconciliation) Lookup(entryType string) (ReconciliationLine, bool) {
	i := sort.Search(len(r), func(i int) bool { return r[i].EntryType >= entryType })
	if i < len(r) && r[i].EntryType == entryType {
		return r[i], true
	}
	return ReconciliationLine{}, false
}
