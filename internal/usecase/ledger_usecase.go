package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/revrec/internal/aggregate"
	"github.com/iho/revrec/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase handles reads over the stored ledger.
type LedgerUseCase struct {
	journalRepo JournalRepository
	cache       Cache
	recorder    Recorder
	logger      zerolog.Logger
	cacheTTL    time.Duration
}

// LedgerConfig wires a LedgerUseCase. Cache and Recorder are optional.
type LedgerConfig struct {
	JournalRepo JournalRepository
	Cache       Cache
	Recorder    Recorder
	Logger      zerolog.Logger
	CacheTTL    time.Duration
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultTrialBalanceTTL
	}

	return &LedgerUseCase{
		journalRepo: cfg.JournalRepo,
		cache:       cfg.Cache,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
		cacheTTL:    cfg.CacheTTL,
	}
}

// TrialBalanceOutput is a contract's trial balance with its column totals.
type TrialBalanceOutput struct {
	ContractID   string
	TrialBalance domain.TrialBalance
	Totals       domain.Totals
}

// ConsistencyReport is the stored ledger's per-account columns and their totals.
type ConsistencyReport struct {
	TrialBalance domain.TrialBalance
	Totals       domain.Totals
	Consistent   bool
}

// TrialBalance returns the trial balance of a posted contract, reading through the cache.
func (uc *LedgerUseCase) TrialBalance(ctx context.Context, contractID string) (*TrialBalanceOutput, error) {
	if err := domain.ValidateContractID(contractID); err != nil {
		return nil, err
	}

	key := TrialBalanceCacheKey(contractID)
	if tb, ok := uc.cached(ctx, key); ok {
		return &TrialBalanceOutput{
			ContractID:   contractID,
			TrialBalance: tb,
			Totals:       aggregate.ColumnTotals(tb),
		}, nil
	}

	posted, err := uc.journalRepo.ListAllByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if len(posted) == 0 {
		return nil, domain.ErrContractNotFound
	}

	entries := make([]domain.JournalEntry, 0, len(posted))
	for _, p := range posted {
		entries = append(entries, p.Entry)
	}
	tb := aggregate.TrialBalance(entries)

	if uc.cache != nil {
		if data, err := json.Marshal(tb); err == nil {
			if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
				uc.logger.Warn().Err(err).Str("contract_id", contractID).Msg("failed to cache trial balance")
			}
		}
	}

	return &TrialBalanceOutput{
		ContractID:   contractID,
		TrialBalance: tb,
		Totals:       aggregate.ColumnTotals(tb),
	}, nil
}

// Summarize aggregates caller-supplied entries without touching storage.
func (uc *LedgerUseCase) Summarize(entries []domain.JournalEntry) *TrialBalanceOutput {
	tb := aggregate.TrialBalance(entries)
	return &TrialBalanceOutput{
		TrialBalance: tb,
		Totals:       aggregate.ColumnTotals(tb),
	}
}

// ListEntries returns a page of a contract's persisted entries in posting order.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, contractID string, limit, offset int) ([]*domain.PostedEntry, error) {
	if err := domain.ValidateContractID(contractID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	return uc.journalRepo.ListByContract(ctx, contractID, limit, offset)
}

// CheckConsistency verifies that the stored ledger's debit and credit columns agree.
// The report is returned together with ErrInconsistentLedger when they do not.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	tb, err := uc.journalRepo.AccountTotals(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		TrialBalance: tb,
		Totals:       aggregate.ColumnTotals(tb),
		Consistent:   true,
	}

	if err := aggregate.CheckBalanced(tb); err != nil {
		report.Consistent = false
		uc.logger.Error().Err(err).Msg("ledger consistency check failed")
		return report, fmt.Errorf("%w: %w", ErrInconsistentLedger, err)
	}

	return report, nil
}

func (uc *LedgerUseCase) cached(ctx context.Context, key string) (domain.TrialBalance, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil || data == nil {
		uc.recorder.RecordCacheLookup(false)
		return nil, false
	}

	var tb domain.TrialBalance
	if err := json.Unmarshal(data, &tb); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed cached trial balance")
		uc.recorder.RecordCacheLookup(false)
		return nil, false
	}

	uc.recorder.RecordCacheLookup(true)
	return tb, true
}
