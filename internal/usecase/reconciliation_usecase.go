package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/aggregate"
	"github.com/iho/revrec/internal/domain"
)

// ReconciliationUseCase rolls opening balances forward over journal activity.
type ReconciliationUseCase struct {
	recorder Recorder
	logger   zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case. recorder may be nil.
func NewReconciliationUseCase(recorder Recorder, logger zerolog.Logger) *ReconciliationUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReconciliationUseCase{
		recorder: recorder,
		logger:   logger,
	}
}

// ReconcileInput is the activity and opening balances to reconcile.
type ReconcileInput struct {
	Entries []domain.ReconciliationInput
	Opening map[string]decimal.Decimal
	// DefaultNature is "debit", "credit" or empty for debit.
	DefaultNature string
}

// Reconcile computes one roll-forward line per entry type.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, input ReconcileInput) (domain.Reconciliation, error) {
	nature, err := domain.ParseNature(input.DefaultNature)
	if err != nil {
		return nil, err
	}

	lines := aggregate.Reconcile(input.Entries, input.Opening, nature)
	uc.recorder.RecordReconciliation(len(lines))

	uc.logger.Debug().
		Int("entries", len(input.Entries)).
		Int("lines", len(lines)).
		Str("default_nature", string(nature)).
		Msg("reconciliation computed")

	return lines, nil
}
