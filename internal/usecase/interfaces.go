package usecase

import (
	"context"
	"time"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/posting"
)

// JournalRepository defines data access for posted journal entries.
type JournalRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, entries []*domain.PostedEntry) error
	ListByContract(ctx context.Context, contractID string, limit, offset int) ([]*domain.PostedEntry, error)
	ListAllByContract(ctx context.Context, contractID string) ([]*domain.PostedEntry, error)
	CountByContract(ctx context.Context, contractID string) (int64, error)
	// AccountTotals returns the debit and credit columns of every stored account.
	AccountTotals(ctx context.Context) (domain.TrialBalance, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives posting and reconciliation measurements.
type Recorder interface {
	RecordPosting(events []domain.Event, res posting.Result, elapsed time.Duration)
	RecordContractPosted()
	RecordPostingError(reason string)
	RecordReconciliation(lines int)
	RecordCacheLookup(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordPosting([]domain.Event, posting.Result, time.Duration) {}
func (nopRecorder) RecordContractPosted() {}
func (nopRecorder) RecordPostingError(string) {}
func (nopRecorder) RecordReconciliation(int) {}
func (nopRecorder) RecordCacheLookup(bool) {}
