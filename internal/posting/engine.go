// Package posting turns business events into balanced journal entries.
//
// A posting pass sorts the events, then walks them once while tracking three
// running totals: billed, collected and recognized. The contract asset,
// contract liability and open receivable balances are derived from those totals
// at each event and decide how the event's amount is split across accounts.
package posting

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/domain"
)

// Result is the outcome of a posting pass.
type Result struct {
	Entries  []domain.JournalEntry
	Position domain.Position
	Posted   int
	Skipped  int
}

// Post runs a posting pass and returns the journal entries.
func Post(events []domain.Event) ([]domain.JournalEntry, error) {
	res, err := Run(events)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// Run runs a posting pass over events. The input slice is not modified.
// Posting is all-or-nothing: on error no entries are returned.
func Run(events []domain.Event) (Result, error) {
	ordered, err := order(events)
	if err != nil {
		return Result{}, err
	}

	var (
		st  state
		res Result
	)
	res.Entries = make([]domain.JournalEntry, 0, len(ordered))

	for _, ev := range ordered {
		if !ev.Postable() {
			res.Skipped++
			continue
		}

		entries, err := st.apply(ev)
		if err != nil {
			return Result{}, err
		}

		res.Entries = append(res.Entries, entries...)
		res.Posted++
	}

	res.Position = st.position()
	return res, nil
}

// order validates every kind and returns a copy of events sorted by
// (second-truncated timestamp, kind priority). Equal keys keep input order.
func order(events []domain.Event) ([]domain.Event, error) {
	for _, ev := range events {
		if !ev.Kind.IsValid() {
			return nil, &domain.UnsupportedEventKindError{Kind: ev.Kind}
		}
	}

	sorted := make([]domain.Event, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].OccurredAt.Unix(), sorted[j].OccurredAt.Unix()
		if ti != tj {
			return ti < tj
		}

		pi, _ := sorted[i].Kind.Priority()
		pj, _ := sorted[j].Kind.Priority()
		return pi < pj
	})

	return sorted, nil
}

// round rounds a monetary amount to cents, half away from zero.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
