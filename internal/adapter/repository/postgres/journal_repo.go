package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/infrastructure/postgres/generated"
	"github.com/iho/revrec/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return newJournalRepository(pool)
}

func newJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// CreateBatch inserts a contract's entries within a transaction. A clash on
// (contract_id, sequence) means the contract was posted concurrently.
func (r *JournalRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.PostedEntry) error {
	queries := r.queries.WithTx(tx.(*Tx).PgxTx())

	for _, e := range entries {
		err := queries.CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
			ID:            e.ID,
			ContractID:    e.ContractID,
			Sequence:      e.Sequence,
			DebitAccount:  string(e.Entry.Debit),
			CreditAccount: string(e.Entry.Credit),
			Amount:        decimalToNumeric(e.Entry.Amount),
			EventKind:     string(e.Entry.EventKind),
			EventKey:      e.Entry.EventKey,
			EventAt:       timeToPgTimestamptz(e.Entry.EventAt),
			CreatedAt:     timeToPgTimestamptz(e.CreatedAt),
		})
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrContractAlreadyPosted, e.ContractID)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// ListByContract returns a page of a contract's entries in sequence order.
func (r *JournalRepository) ListByContract(ctx context.Context, contractID string, limit, offset int) ([]*domain.PostedEntry, error) {
	rows, err := r.queries.GetJournalEntriesByContract(ctx, generated.GetJournalEntriesByContractParams{
		ContractID: contractID,
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToPostedEntries(rows), nil
}

// ListAllByContract returns every entry of a contract in sequence order.
func (r *JournalRepository) ListAllByContract(ctx context.Context, contractID string) ([]*domain.PostedEntry, error) {
	rows, err := r.queries.GetAllJournalEntriesByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return rowsToPostedEntries(rows), nil
}

// CountByContract returns how many entries a contract has.
func (r *JournalRepository) CountByContract(ctx context.Context, contractID string) (int64, error) {
	return r.queries.CountJournalEntriesByContract(ctx, contractID)
}

// AccountTotals returns the stored debit and credit columns per account.
func (r *JournalRepository) AccountTotals(ctx context.Context) (domain.TrialBalance, error) {
	rows, err := r.queries.GetAccountTotals(ctx)
	if err != nil {
		return nil, err
	}

	tb := make(domain.TrialBalance, 0, len(rows))
	for _, row := range rows {
		debit := numericToDecimal(row.TotalDebit)
		credit := numericToDecimal(row.TotalCredit)
		tb = append(tb, domain.AccountBalance{
			Account: domain.Account(row.Account),
			Debit:   debit,
			Credit:  credit,
			Net:     debit.Sub(credit),
		})
	}

	return tb, nil
}

func rowsToPostedEntries(rows []generated.JournalEntry) []*domain.PostedEntry {
	entries := make([]*domain.PostedEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.PostedEntry{
			ID:         row.ID,
			ContractID: row.ContractID,
			Sequence:   row.Sequence,
			CreatedAt:  row.CreatedAt.Time,
			Entry: domain.JournalEntry{
				EventAt:   row.EventAt.Time,
				Debit:     domain.Account(row.DebitAccount),
				Credit:    domain.Account(row.CreditAccount),
				EventKind: domain.EventKind(row.EventKind),
				EventKey:  row.EventKey,
				Amount:    numericToDecimal(row.Amount),
			},
		})
	}
	return entries
}
