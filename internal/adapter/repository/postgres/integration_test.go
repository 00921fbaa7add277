//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/adapter/repository/postgres"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/infrastructure/eventpublisher"
	infrapg "github.com/iho/revrec/internal/infrastructure/postgres"
	"github.com/iho/revrec/internal/usecase"
)

const migrationsPath = "../../../infrastructure/postgres/migrations"

type testEnv struct {
	pool    *pgxpool.Pool
	journal *postgres.JournalRepository
	outbox  *postgres.OutboxRepository
	posting *usecase.PostingUseCase
	ledger  *usecase.LedgerUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapg.RunMigrations(dbURL, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE journal_entries, outbox_events"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	journal := postgres.NewJournalRepository(pool)
	outbox := postgres.NewOutboxRepository(pool)
	logger := zerolog.Nop()

	return &testEnv{
		pool:    pool,
		journal: journal,
		outbox:  outbox,
		posting: usecase.NewPostingUseCase(usecase.PostingConfig{
			TxManager:   postgres.NewTxManager(pool),
			JournalRepo: journal,
			OutboxRepo:  outbox,
			IDGen:       postgres.NewULIDGenerator(),
			Retrier:     postgres.NewRetrier().WithLogger(logger),
			Logger:      logger,
		}),
		ledger: usecase.NewLedgerUseCase(usecase.LedgerConfig{
			JournalRepo: journal,
			Logger:      logger,
		}),
	}
}

func fullCycle() []domain.Event {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []domain.Event{
		{OccurredAt: day(20), Kind: domain.EventKindCash, Amount: decimal.NewFromInt(60)},
		{OccurredAt: day(1), Kind: domain.EventKindInvoice, Amount: decimal.NewFromInt(100)},
		{OccurredAt: day(15), Kind: domain.EventKindRevenue, Amount: decimal.NewFromInt(30)},
	}
}

func TestPostContractPersistsEntriesAndOutboxEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.posting.PostContract(ctx, usecase.PostingInput{ContractID: "C-1001", Events: fullCycle()})
	if err != nil {
		t.Fatalf("PostContract: %v", err)
	}
	if len(out.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out.Entries))
	}

	stored, err := env.journal.ListAllByContract(ctx, "C-1001")
	if err != nil {
		t.Fatalf("ListAllByContract: %v", err)
	}
	if len(stored) != len(out.Entries) {
		t.Fatalf("expected %d stored entries, got %d", len(out.Entries), len(stored))
	}
	for i, p := range stored {
		if p.Sequence != int64(i+1) {
			t.Fatalf("entry %d: expected sequence %d, got %d", i, i+1, p.Sequence)
		}
		want := out.Entries[i]
		if p.Entry.Debit != want.Debit || p.Entry.Credit != want.Credit || !p.Entry.Amount.Equal(want.Amount) {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want, p.Entry)
		}
	}

	events, err := env.outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("GetUnpublished: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}
	if events[0].AggregateID != "C-1001" || events[0].EventType != domain.EventTypeJournalPosted {
		t.Fatalf("unexpected outbox event: %+v", events[0])
	}

	report, err := env.ledger.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	if !report.Consistent || !report.Totals.Debits.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("unexpected consistency report: %+v", report.Totals)
	}

	tb, err := env.ledger.TrialBalance(ctx, "C-1001")
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	rev, ok := tb.TrialBalance.Lookup(domain.AccountRevenue)
	if !ok || !rev.Credit.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected revenue credit 30, got %+v", rev)
	}
}

func TestPostContractRejectsSecondPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := usecase.PostingInput{ContractID: "C-2002", Events: fullCycle()}
	if _, err := env.posting.PostContract(ctx, input); err != nil {
		t.Fatalf("first PostContract: %v", err)
	}

	_, err := env.posting.PostContract(ctx, input)
	if !errors.Is(err, domain.ErrContractAlreadyPosted) {
		t.Fatalf("expected ErrContractAlreadyPosted, got %v", err)
	}

	count, err := env.journal.CountByContract(ctx, "C-2002")
	if err != nil {
		t.Fatalf("CountByContract: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 entries after rejected repost, got %d", count)
	}
}

func TestConcurrentPostsOfSameContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.posting.PostContract(ctx, usecase.PostingInput{ContractID: "C-3003", Events: fullCycle()})
			if err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Fatalf("expected exactly one successful post, got %d", got)
	}

	count, err := env.journal.CountByContract(ctx, "C-3003")
	if err != nil {
		t.Fatalf("CountByContract: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 entries, got %d", count)
	}

	if _, err := env.ledger.CheckConsistency(ctx); err != nil {
		t.Fatalf("ledger inconsistent after concurrent posts: %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestEventPublisherDrainsOutbox(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, id := range []string{"C-4001", "C-4002"} {
		if _, err := env.posting.PostContract(ctx, usecase.PostingInput{ContractID: id, Events: fullCycle()}); err != nil {
			t.Fatalf("PostContract %s: %v", id, err)
		}
	}

	pub := &recordingPublisher{}
	ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: env.outbox,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   20 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ep.Start(runCtx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for pub.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	if got := pub.count(); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}

	remaining, err := env.outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("GetUnpublished: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty outbox, got %d events", len(remaining))
	}
}
