package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/revrec/internal/aggregate"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/posting"
)

// PostingUseCase runs posting passes and persists their journal entries.
type PostingUseCase struct {
	txManager   TransactionManager
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	recorder    Recorder
	logger      zerolog.Logger
	maxEvents   int
	concurrency int
	now         func() time.Time
}

// PostingConfig wires a PostingUseCase. Cache, Recorder and Retrier are optional.
type PostingConfig struct {
	TxManager   TransactionManager
	JournalRepo JournalRepository
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Retrier     Retrier
	Cache       Cache
	Recorder    Recorder
	Logger      zerolog.Logger
	MaxEvents   int
	Concurrency int
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(cfg PostingConfig) *PostingUseCase {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultPostingConcurrency
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = domain.MaxEventsPerPass
	}

	return &PostingUseCase{
		txManager:   cfg.TxManager,
		journalRepo: cfg.JournalRepo,
		outboxRepo:  cfg.OutboxRepo,
		idGen:       cfg.IDGen,
		retrier:     cfg.Retrier,
		cache:       cfg.Cache,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
		maxEvents:   cfg.MaxEvents,
		concurrency: cfg.Concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PostingInput is one contract's complete event history.
type PostingInput struct {
	ContractID string
	Events     []domain.Event
}

// PostingOutput is the result of a posting pass.
type PostingOutput struct {
	ContractID   string
	Entries      []domain.JournalEntry
	TrialBalance domain.TrialBalance
	Totals       domain.Totals
	Position     domain.Position
	Skipped      int
}

// BatchResult is the outcome of posting one contract of a batch.
type BatchResult struct {
	ContractID string
	Output     *PostingOutput
	Err        error
}

// Preview runs a posting pass without persisting anything.
func (uc *PostingUseCase) Preview(ctx context.Context, events []domain.Event) (*PostingOutput, error) {
	if err := domain.ValidateEventCount(len(events), uc.maxEvents); err != nil {
		uc.recorder.RecordPostingError(reasonInvalidInput)
		return nil, err
	}

	start := time.Now()
	res, err := posting.Run(events)
	if err != nil {
		uc.recorder.RecordPostingError(reasonUnsupportedKind)
		return nil, err
	}
	uc.recorder.RecordPosting(events, res, time.Since(start))

	tb := aggregate.TrialBalance(res.Entries)
	if err := aggregate.CheckBalanced(tb); err != nil {
		uc.recorder.RecordPostingError(reasonUnbalanced)
		return nil, err
	}

	if res.Skipped > 0 {
		uc.logger.Debug().
			Int("skipped", res.Skipped).
			Int("events", len(events)).
			Msg("skipped events with non-positive amounts")
	}

	return &PostingOutput{
		Entries:      res.Entries,
		TrialBalance: tb,
		Totals:       aggregate.Totals(res.Entries),
		Position:     res.Position,
		Skipped:      res.Skipped,
	}, nil
}

// PostContract posts a contract's full event history and persists the entries.
// A contract can be posted once; its history is not appended to.
func (uc *PostingUseCase) PostContract(ctx context.Context, input PostingInput) (*PostingOutput, error) {
	if err := domain.ValidateContractID(input.ContractID); err != nil {
		uc.recorder.RecordPostingError(reasonInvalidInput)
		return nil, err
	}

	existing, err := uc.journalRepo.CountByContract(ctx, input.ContractID)
	if err != nil {
		uc.recorder.RecordPostingError(reasonStorage)
		return nil, err
	}
	if existing > 0 {
		uc.recorder.RecordPostingError(reasonAlreadyPosted)
		return nil, domain.ErrContractAlreadyPosted
	}

	out, err := uc.Preview(ctx, input.Events)
	if err != nil {
		return nil, err
	}
	out.ContractID = input.ContractID

	if len(out.Entries) == 0 {
		uc.logger.Info().
			Str("contract_id", input.ContractID).
			Int("events", len(input.Events)).
			Msg("contract produced no entries")
		return out, nil
	}

	persist := func() error {
		return uc.persist(ctx, input.ContractID, out)
	}
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, persist)
	} else {
		err = persist()
	}
	if err != nil {
		if errors.Is(err, domain.ErrContractAlreadyPosted) {
			uc.recorder.RecordPostingError(reasonAlreadyPosted)
		} else {
			uc.recorder.RecordPostingError(reasonStorage)
		}
		return nil, err
	}

	uc.invalidate(ctx, input.ContractID)
	uc.recorder.RecordContractPosted()

	uc.logger.Info().
		Str("contract_id", input.ContractID).
		Int("events", len(input.Events)).
		Int("entries", len(out.Entries)).
		Msg("contract posted")

	return out, nil
}

// PostContracts posts independent contracts in parallel. Results keep the input
// order and a failed contract does not stop the others.
func (uc *PostingUseCase) PostContracts(ctx context.Context, inputs []PostingInput) ([]BatchResult, error) {
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := uc.PostContract(gctx, input)
			results[i] = BatchResult{ContractID: input.ContractID, Output: out, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (uc *PostingUseCase) persist(ctx context.Context, contractID string, out *PostingOutput) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := uc.now()

	posted := make([]*domain.PostedEntry, 0, len(out.Entries))
	for i, e := range out.Entries {
		posted = append(posted, &domain.PostedEntry{
			ID:         uc.idGen.Generate(),
			ContractID: contractID,
			Sequence:   int64(i + 1),
			Entry:      e,
			CreatedAt:  now,
		})
	}

	if err := uc.journalRepo.CreateBatch(ctx, tx, posted); err != nil {
		return err
	}

	event := domain.JournalPostedEvent{
		ContractID: contractID,
		EntryCount: len(posted),
		Debits:     out.Totals.Debits.StringFixed(2),
		Credits:    out.Totals.Credits.StringFixed(2),
		Billed:     out.Position.Billed.StringFixed(2),
		Collected:  out.Position.Collected.StringFixed(2),
		Recognized: out.Position.Recognized.StringFixed(2),
	}
	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   contractID,
		AggregateType: domain.AggregateTypeContract,
		EventType:     domain.EventTypeJournalPosted,
		Payload:       event.Payload(),
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *PostingUseCase) invalidate(ctx context.Context, contractID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, TrialBalanceCacheKey(contractID)); err != nil {
		uc.logger.Warn().Err(err).Str("contract_id", contractID).Msg("failed to invalidate trial balance cache")
	}
}
