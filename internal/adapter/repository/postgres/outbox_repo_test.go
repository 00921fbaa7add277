package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/infrastructure/postgres/generated"
)

func TestOutboxRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)
	tx := beginTx(t, pool)

	payload := domain.JournalPostedEvent{ContractID: "c-1", EntryCount: 3}.Payload()

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("evt-1", "c-1", domain.AggregateTypeContract, domain.EventTypeJournalPosted, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "c-1",
		AggregateType: domain.AggregateTypeContract,
		EventType:     domain.EventTypeJournalPosted,
		Payload:       payload,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryMarkAndPurge(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	pool.ExpectExec("UPDATE outbox_events SET published").
		WithArgs("evt-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("DELETE FROM outbox_events").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	if err := repo.MarkPublished(context.Background(), "evt-1", time.Now()); err != nil {
		t.Fatalf("MarkPublished failed: %v", err)
	}
	if err := repo.DeletePublished(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("DeletePublished failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestRowToOutboxEvent(t *testing.T) {
	payload := []byte(`{"contract_id":"c-1","entry_count":3}`)
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	row := rowToOutboxEvent(generated.OutboxEvent{
		ID:          "evt-1",
		Payload:     payload,
		CreatedAt:   pgtype.Timestamptz{Time: at, Valid: true},
		PublishedAt: pgtype.Timestamptz{Time: at, Valid: true},
		Published:   true,
	})

	if row.Payload["contract_id"] != "c-1" {
		t.Fatalf("unexpected payload %#v", row.Payload)
	}
	if row.PublishedAt == nil || !row.PublishedAt.Equal(at) {
		t.Fatalf("expected published at %v, got %v", at, row.PublishedAt)
	}
}
