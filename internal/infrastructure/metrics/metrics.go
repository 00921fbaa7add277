package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/posting"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	ContractsPosted prometheus.Counter
	EventsProcessed *prometheus.CounterVec
	EventsSkipped   prometheus.Counter
	EntriesEmitted  *prometheus.CounterVec
	PostedAmount    *prometheus.CounterVec
	PostingDuration prometheus.Histogram
	PostingErrors   *prometheus.CounterVec

	// Reconciliation metrics
	Reconciliations     prometheus.Counter
	ReconciliationLines prometheus.Histogram

	// Cache metrics
	CacheLookups *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Posting metrics
		ContractsPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "revrec_contracts_posted_total",
			Help: "Total number of contracts posted to the ledger",
		}),
		EventsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revrec_events_processed_total",
				Help: "Total number of events that produced postings, by kind",
			},
			[]string{"kind"},
		),
		EventsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "revrec_events_skipped_total",
			Help: "Total number of events skipped for a non-positive amount",
		}),
		EntriesEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revrec_entries_emitted_total",
				Help: "Total number of journal entries emitted, by debit and credit account",
			},
			[]string{"debit", "credit"},
		),
		PostedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revrec_posted_amount_total",
				Help: "Sum of journal entry amounts, by event kind",
			},
			[]string{"kind"},
		),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "revrec_posting_duration_seconds",
			Help:    "Duration of posting passes",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revrec_posting_errors_total",
				Help: "Total number of failed posting passes by reason",
			},
			[]string{"reason"},
		),

		// Reconciliation metrics
		Reconciliations: factory.NewCounter(prometheus.CounterOpts{
			Name: "revrec_reconciliations_total",
			Help: "Total number of reconciliations computed",
		}),
		ReconciliationLines: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "revrec_reconciliation_lines",
			Help:    "Number of accounts per reconciliation",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		// Cache metrics
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revrec_cache_lookups_total",
				Help: "Trial balance cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordPosting records a successful posting pass.
func (m *Metrics) RecordPosting(events []domain.Event, res posting.Result, elapsed time.Duration) {
	m.PostingDuration.Observe(elapsed.Seconds())
	m.EventsSkipped.Add(float64(res.Skipped))

	for _, ev := range events {
		if ev.Postable() {
			m.EventsProcessed.WithLabelValues(string(ev.Kind)).Inc()
		}
	}

	for _, e := range res.Entries {
		m.EntriesEmitted.WithLabelValues(string(e.Debit), string(e.Credit)).Inc()
		m.PostedAmount.WithLabelValues(string(e.EventKind)).Add(e.Amount.InexactFloat64())
	}
}

// RecordContractPosted counts a contract persisted to the ledger.
func (m *Metrics) RecordContractPosted() {
	m.ContractsPosted.Inc()
}

// RecordPostingError counts a failed posting pass.
func (m *Metrics) RecordPostingError(reason string) {
	m.PostingErrors.WithLabelValues(reason).Inc()
}

// RecordReconciliation records a computed reconciliation.
func (m *Metrics) RecordReconciliation(lines int) {
	m.Reconciliations.Inc()
	m.ReconciliationLines.Observe(float64(lines))
}

// RecordCacheLookup records a trial balance cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
