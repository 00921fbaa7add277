// Package aggregate folds journal entries into per-account balances.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/domain"
)

// TrialBalance sums debits and credits per account.
// Entries with a non-positive amount are ignored. Lines are sorted by account.
func TrialBalance(entries []domain.JournalEntry) domain.TrialBalance {
	debits := make(map[domain.Account]decimal.Decimal)
	credits := make(map[domain.Account]decimal.Decimal)

	for _, e := range entries {
		if !e.Amount.IsPositive() {
			continue
		}
		debits[e.Debit] = debits[e.Debit].Add(e.Amount)
		credits[e.Credit] = credits[e.Credit].Add(e.Amount)
	}

	seen := make(map[domain.Account]struct{}, len(debits)+len(credits))
	for a := range debits {
		seen[a] = struct{}{}
	}
	for a := range credits {
		seen[a] = struct{}{}
	}

	tb := make(domain.TrialBalance, 0, len(seen))
	for a := range seen {
		debit := debits[a].Round(2)
		credit := credits[a].Round(2)
		tb = append(tb, domain.AccountBalance{
			Account: a,
			Debit:   debit,
			Credit:  credit,
			Net:     debit.Sub(credit).Round(2),
		})
	}

	sort.Slice(tb, func(i, j int) bool { return tb[i].Account < tb[j].Account })

	return tb
}

// Totals sums all debits and all credits independently.
func Totals(entries []domain.JournalEntry) domain.Totals {
	debits, credits := decimal.Zero, decimal.Zero

	for _, e := range entries {
		if !e.Amount.IsPositive() {
			continue
		}
		debits = debits.Add(e.Amount)
		credits = credits.Add(e.Amount)
	}

	return domain.Totals{
		Debits:  debits.Round(2),
		Credits: credits.Round(2),
	}
}

// ColumnTotals sums the debit and credit columns of a trial balance.
func ColumnTotals(tb domain.TrialBalance) domain.Totals {
	debits, credits := decimal.Zero, decimal.Zero
	for _, bal := range tb {
		debits = debits.Add(bal.Debit)
		credits = credits.Add(bal.Credit)
	}
	return domain.Totals{Debits: debits, Credits: credits}
}

// CheckBalanced returns ErrUnbalancedLedger when the debit and credit columns
// of the trial balance differ.
func CheckBalanced(tb domain.TrialBalance) error {
	totals := ColumnTotals(tb)
	if !totals.Balanced() {
		return fmt.Errorf("%w: debits=%s credits=%s difference=%s",
			domain.ErrUnbalancedLedger,
			totals.Debits.StringFixed(2),
			totals.Credits.StringFixed(2),
			totals.Debits.Sub(totals.Credits).StringFixed(2),
		)
	}
	return nil
}
