package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/domain"
)

// DefaultNature is the nature assumed for entry types missing from the nature table.
const DefaultNature = domain.NatureDebit

// Reconcile rolls each account forward from its opening balance.
//
// Every input contributes to one side only, chosen by the nature of its entry
// type: debit-natured types fill the debit bucket, credit-natured types the
// credit bucket. Entry types not in the nature table use fallback.
// The result covers every entry type found in opening or inputs.
func Reconcile(inputs []domain.ReconciliationInput, opening map[string]decimal.Decimal, fallback domain.Nature) domain.Reconciliation {
	if fallback == "" {
		fallback = DefaultNature
	}

	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	seen := make(map[string]struct{}, len(opening))

	for entryType := range opening {
		seen[entryType] = struct{}{}
	}

	for _, in := range inputs {
		seen[in.EntryType] = struct{}{}
		if domain.NatureOf(in.EntryType, fallback) == domain.NatureDebit {
			debits[in.EntryType] = debits[in.EntryType].Add(in.Amount)
		} else {
			credits[in.EntryType] = credits[in.EntryType].Add(in.Amount)
		}
	}

	out := make(domain.Reconciliation, 0, len(seen))
	for entryType := range seen {
		nature := domain.NatureOf(entryType, fallback)
		open := opening[entryType]
		debit := debits[entryType]
		credit := credits[entryType]

		var closing decimal.Decimal
		if nature == domain.NatureDebit {
			closing = open.Add(debit).Sub(credit)
		} else {
			closing = open.Sub(debit).Add(credit)
		}

		out = append(out, domain.ReconciliationLine{
			EntryType: entryType,
			Nature:    nature,
			Opening:   open.Round(2),
			Debit:     debit.Round(2),
			Credit:    credit.Round(2),
			Closing:   closing.Round(2),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EntryType < out[j].EntryType })

	return out
}
