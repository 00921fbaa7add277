package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
	"github.com/iho/revrec/internal/usecase/mocks"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ev(kind domain.EventKind, offsetDays int, amount string) domain.Event {
	return domain.Event{
		OccurredAt: day.AddDate(0, 0, offsetDays),
		Kind:       kind,
		Key:        string(kind),
		Amount:     decimal.RequireFromString(amount),
	}
}

// fullCycle bills, collects and recognizes 100.
func fullCycle() []domain.Event {
	return []domain.Event{
		ev(domain.EventKindRevenue, 2, "100"),
		ev(domain.EventKindInvoice, 0, "100"),
		ev(domain.EventKindCash, 1, "100"),
	}
}

type postingMocks struct {
	txMgr    *mocks.MockTransactionManager
	tx       *mocks.MockTransaction
	journal  *mocks.MockJournalRepository
	outbox   *mocks.MockOutboxRepository
	idGen    *mocks.MockIDGenerator
	retrier  *mocks.MockRetrier
	cache    *mocks.MockCache
	recorder *mocks.MockRecorder
}

func newPostingMocks(t *testing.T) (*postingMocks, *usecase.PostingUseCase) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &postingMocks{
		txMgr:    mocks.NewMockTransactionManager(ctrl),
		tx:       mocks.NewMockTransaction(ctrl),
		journal:  mocks.NewMockJournalRepository(ctrl),
		outbox:   mocks.NewMockOutboxRepository(ctrl),
		idGen:    mocks.NewMockIDGenerator(ctrl),
		retrier:  mocks.NewMockRetrier(ctrl),
		cache:    mocks.NewMockCache(ctrl),
		recorder: mocks.NewMockRecorder(ctrl),
	}

	uc := usecase.NewPostingUseCase(usecase.PostingConfig{
		TxManager:   m.txMgr,
		JournalRepo: m.journal,
		OutboxRepo:  m.outbox,
		IDGen:       m.idGen,
		Retrier:     m.retrier,
		Cache:       m.cache,
		Recorder:    m.recorder,
		Logger:      zerolog.Nop(),
		MaxEvents:   10,
	})

	return m, uc
}

func (m *postingMocks) expectRetryPassthrough() {
	m.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, op func() error) error { return op() },
	)
}

func TestPostingUseCase_Preview(t *testing.T) {
	m, uc := newPostingMocks(t)
	m.recorder.EXPECT().RecordPosting(gomock.Any(), gomock.Any(), gomock.Any())

	out, err := uc.Preview(context.Background(), fullCycle())
	require.NoError(t, err)

	require.Len(t, out.Entries, 3)
	assert.Equal(t, domain.AccountReceivable, out.Entries[0].Debit)
	assert.Equal(t, domain.AccountContractLiability, out.Entries[0].Credit)
	assert.Equal(t, domain.AccountCash, out.Entries[1].Debit)
	assert.Equal(t, domain.AccountRevenue, out.Entries[2].Credit)

	assert.True(t, out.Totals.Balanced())
	assert.Equal(t, "300", out.Totals.Debits.String())
	assert.Equal(t, "100", out.Position.Recognized.String())
	assert.True(t, out.Position.ContractLiability.IsZero())

	cash, ok := out.TrialBalance.Lookup(domain.AccountCash)
	require.True(t, ok)
	assert.Equal(t, "100", cash.Net.String())
}

func TestPostingUseCase_PreviewRejectsUnsupportedKind(t *testing.T) {
	m, uc := newPostingMocks(t)
	m.recorder.EXPECT().RecordPostingError("unsupported_kind")

	events := append(fullCycle(), domain.Event{OccurredAt: day, Kind: "refund", Amount: decimal.Zero})

	out, err := uc.Preview(context.Background(), events)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrUnsupportedEventKind)
}

func TestPostingUseCase_PreviewRejectsTooManyEvents(t *testing.T) {
	m, uc := newPostingMocks(t)
	m.recorder.EXPECT().RecordPostingError("invalid_input")

	events := make([]domain.Event, 11)
	for i := range events {
		events[i] = ev(domain.EventKindInvoice, i, "1")
	}

	_, err := uc.Preview(context.Background(), events)
	assert.ErrorIs(t, err, domain.ErrTooManyEvents)
}

func TestPostingUseCase_PostContract(t *testing.T) {
	m, uc := newPostingMocks(t)
	ctx := context.Background()

	var (
		stored []*domain.PostedEntry
		event  *domain.OutboxEvent
	)

	gomock.InOrder(
		m.journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(0), nil),
		m.recorder.EXPECT().RecordPosting(gomock.Any(), gomock.Any(), gomock.Any()),
		m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.journal.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, tx usecase.Transaction, entries []*domain.PostedEntry) error {
				stored = entries
				return nil
			},
		),
		m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, tx usecase.Transaction, e *domain.OutboxEvent) error {
				event = e
				return nil
			},
		),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
		m.cache.EXPECT().Delete(gomock.Any(), usecase.TrialBalanceCacheKey("c-1")).Return(nil),
		m.recorder.EXPECT().RecordContractPosted(),
	)
	m.expectRetryPassthrough()
	m.idGen.EXPECT().Generate().Return("01HZX").AnyTimes()

	out, err := uc.PostContract(ctx, usecase.PostingInput{ContractID: "c-1", Events: fullCycle()})
	require.NoError(t, err)
	assert.Equal(t, "c-1", out.ContractID)

	require.Len(t, stored, 3)
	for i, p := range stored {
		assert.Equal(t, "c-1", p.ContractID)
		assert.Equal(t, int64(i+1), p.Sequence)
		assert.Equal(t, out.Entries[i], p.Entry)
	}

	require.NotNil(t, event)
	assert.Equal(t, domain.EventTypeJournalPosted, event.EventType)
	assert.Equal(t, domain.AggregateTypeContract, event.AggregateType)
	assert.Equal(t, "c-1", event.AggregateID)
	assert.Equal(t, 3, event.Payload["entry_count"])
	assert.Equal(t, "300.00", event.Payload["debits"])
	assert.Equal(t, "100.00", event.Payload["recognized"])
}

func TestPostingUseCase_PostContractRejectsInvalidID(t *testing.T) {
	m, uc := newPostingMocks(t)
	m.recorder.EXPECT().RecordPostingError("invalid_input")

	_, err := uc.PostContract(context.Background(), usecase.PostingInput{ContractID: "bad id", Events: fullCycle()})
	assert.ErrorIs(t, err, domain.ErrInvalidContractID)
}

func TestPostingUseCase_PostContractRejectsPostedContract(t *testing.T) {
	m, uc := newPostingMocks(t)
	m.journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(3), nil)
	m.recorder.EXPECT().RecordPostingError("already_posted")

	_, err := uc.PostContract(context.Background(), usecase.PostingInput{ContractID: "c-1", Events: fullCycle()})
	assert.ErrorIs(t, err, domain.ErrContractAlreadyPosted)
}

func TestPostingUseCase_PostContractRollsBackOnStorageError(t *testing.T) {
	m, uc := newPostingMocks(t)
	storageErr := errors.New("insert failed")

	m.journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(0), nil)
	m.recorder.EXPECT().RecordPosting(gomock.Any(), gomock.Any(), gomock.Any())
	m.expectRetryPassthrough()
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.idGen.EXPECT().Generate().Return("01HZX").AnyTimes()
	m.journal.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).Return(storageErr)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.recorder.EXPECT().RecordPostingError("storage")

	_, err := uc.PostContract(context.Background(), usecase.PostingInput{ContractID: "c-1", Events: fullCycle()})
	assert.ErrorIs(t, err, storageErr)
}

func TestPostingUseCase_PostContractUniqueViolationMeansPosted(t *testing.T) {
	m, uc := newPostingMocks(t)

	m.journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(0), nil)
	m.recorder.EXPECT().RecordPosting(gomock.Any(), gomock.Any(), gomock.Any())
	m.expectRetryPassthrough()
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.idGen.EXPECT().Generate().Return("01HZX").AnyTimes()
	m.journal.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).Return(domain.ErrContractAlreadyPosted)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.recorder.EXPECT().RecordPostingError("already_posted")

	_, err := uc.PostContract(context.Background(), usecase.PostingInput{ContractID: "c-1", Events: fullCycle()})
	assert.ErrorIs(t, err, domain.ErrContractAlreadyPosted)
}

func TestPostingUseCase_PostContractWithoutEntriesSkipsStorage(t *testing.T) {
	m, uc := newPostingMocks(t)

	m.journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(0), nil)
	m.recorder.EXPECT().RecordPosting(gomock.Any(), gomock.Any(), gomock.Any())

	events := []domain.Event{
		ev(domain.EventKindInvoice, 0, "0"),
		ev(domain.EventKindCash, 1, "-5"),
	}

	out, err := uc.PostContract(context.Background(), usecase.PostingInput{ContractID: "c-1", Events: events})
	require.NoError(t, err)
	assert.Empty(t, out.Entries)
	assert.Equal(t, 2, out.Skipped)
}

func TestPostingUseCase_PostContracts(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	journal := mocks.NewMockJournalRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	uc := usecase.NewPostingUseCase(usecase.PostingConfig{
		TxManager:   txMgr,
		JournalRepo: journal,
		OutboxRepo:  outbox,
		IDGen:       idGen,
		Logger:      zerolog.Nop(),
		Concurrency: 2,
	})

	journal.EXPECT().CountByContract(gomock.Any(), "c-1").Return(int64(0), nil)
	journal.EXPECT().CountByContract(gomock.Any(), "c-2").Return(int64(1), nil)
	journal.EXPECT().CountByContract(gomock.Any(), "c-3").Return(int64(0), nil)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
	idGen.EXPECT().Generate().Return("01HZX").AnyTimes()
	journal.EXPECT().CreateBatch(gomock.Any(), tx, gomock.Any()).Return(nil).Times(2)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil).Times(2)
	tx.EXPECT().Commit(gomock.Any()).Return(nil).Times(2)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)

	results, err := uc.PostContracts(context.Background(), []usecase.PostingInput{
		{ContractID: "c-1", Events: fullCycle()},
		{ContractID: "c-2", Events: fullCycle()},
		{ContractID: "c-3", Events: fullCycle()[:1]},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "c-1", results[0].ContractID)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Output.Entries, 3)

	assert.Equal(t, "c-2", results[1].ContractID)
	assert.ErrorIs(t, results[1].Err, domain.ErrContractAlreadyPosted)
	assert.Nil(t, results[1].Output)

	assert.Equal(t, "c-3", results[2].ContractID)
	assert.NoError(t, results[2].Err)
	require.Len(t, results[2].Output.Entries, 1)
	assert.Equal(t, domain.AccountContractAsset, results[2].Output.Entries[0].Debit)
}

func TestPostingUseCase_PostContractsStopsOnCancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := usecase.NewPostingUseCase(usecase.PostingConfig{
		JournalRepo: mocks.NewMockJournalRepository(ctrl),
		Logger:      zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.PostContracts(ctx, []usecase.PostingInput{{ContractID: "c-1", Events: fullCycle()}})
	assert.ErrorIs(t, err, context.Canceled)
}
