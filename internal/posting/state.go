package posting

import (
	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/domain"
)

// state holds the running totals of one posting pass.
// It is owned by a single pass and never shared.
type state struct {
	billed     decimal.Decimal
	collected  decimal.Decimal
	recognized decimal.Decimal
}

// contractAsset is revenue recognized but not yet billed.
func (s *state) contractAsset() decimal.Decimal {
	return nonNegative(s.recognized.Sub(s.billed))
}

// contractLiability is the amount billed but not yet recognized.
func (s *state) contractLiability() decimal.Decimal {
	return nonNegative(s.billed.Sub(s.recognized))
}

// openReceivable is the amount billed but not yet collected.
func (s *state) openReceivable() decimal.Decimal {
	return nonNegative(s.billed.Sub(s.collected))
}

func (s *state) position() domain.Position {
	return domain.Position{
		Billed:            s.billed,
		Collected:         s.collected,
		Recognized:        s.recognized,
		ContractAsset:     s.contractAsset(),
		ContractLiability: s.contractLiability(),
		Receivable:        s.openReceivable(),
	}
}

// leg is one side of a waterfall split.
type leg struct {
	debit  domain.Account
	credit domain.Account
	amount decimal.Decimal
}

// apply splits a positive event amount across two legs, emits the non-zero
// legs and then advances the running total the event kind drives.
func (s *state) apply(ev domain.Event) ([]domain.JournalEntry, error) {
	amount := ev.Amount

	var (
		legs  [2]leg
		total *decimal.Decimal
	)

	switch ev.Kind {
	case domain.EventKindInvoice:
		toAsset := decimal.Min(amount, s.contractAsset())
		legs = [2]leg{
			{domain.AccountReceivable, domain.AccountContractAsset, toAsset},
			{domain.AccountReceivable, domain.AccountContractLiability, amount.Sub(toAsset)},
		}
		total = &s.billed

	case domain.EventKindCash:
		toReceivable := decimal.Min(amount, s.openReceivable())
		legs = [2]leg{
			{domain.AccountCash, domain.AccountReceivable, toReceivable},
			{domain.AccountCash, domain.AccountContractLiability, amount.Sub(toReceivable)},
		}
		total = &s.collected

	case domain.EventKindRevenue:
		fromLiability := decimal.Min(amount, s.contractLiability())
		legs = [2]leg{
			{domain.AccountContractLiability, domain.AccountRevenue, fromLiability},
			{domain.AccountContractAsset, domain.AccountRevenue, amount.Sub(fromLiability)},
		}
		total = &s.recognized

	default:
		return nil, &domain.UnsupportedEventKindError{Kind: ev.Kind}
	}

	entries := make([]domain.JournalEntry, 0, len(legs))
	for _, l := range legs {
		amt := round(l.amount)
		if !amt.IsPositive() {
			continue
		}

		entries = append(entries, domain.JournalEntry{
			EventAt:   ev.OccurredAt,
			Debit:     l.debit,
			Credit:    l.credit,
			EventKind: ev.Kind,
			EventKey:  ev.Key,
			Amount:    amt,
		})
	}

	*total = round(total.Add(amount))

	return entries, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
