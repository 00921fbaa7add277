package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// PostingRequest carries a contract's events. Preview and single-contract
// posting bodies are decoded with the feed package, so YAML is accepted too.
type PostingRequest = feed.EventDocument

// BatchPostingRequest represents a request to post several contracts.
type BatchPostingRequest struct {
	Contracts []ContractEvents `json:"contracts"`
}

// ContractEvents is one contract of a batch.
type ContractEvents struct {
	ContractID string             `json:"contract_id"`
	Events     []feed.EventRecord `json:"events"`
}

// ToUseCaseInput converts to use case input.
func (r *BatchPostingRequest) ToUseCaseInput() []usecase.PostingInput {
	inputs := make([]usecase.PostingInput, 0, len(r.Contracts))
	for _, c := range r.Contracts {
		doc := feed.EventDocument{ContractID: c.ContractID, Events: c.Events}
		inputs = append(inputs, usecase.PostingInput{
			ContractID: c.ContractID,
			Events:     doc.DomainEvents(),
		})
	}
	return inputs
}

// TrialBalanceRequest represents a request to aggregate journal entries.
type TrialBalanceRequest struct {
	Entries []JournalEntryItem `json:"entries"`
}

// JournalEntryItem is a journal entry supplied by the client.
type JournalEntryItem struct {
	Debit  string          `json:"debit"`
	Credit string          `json:"credit"`
	Amount decimal.Decimal `json:"amount"`
}

// ToDomain converts the request entries.
func (r *TrialBalanceRequest) ToDomain() []domain.JournalEntry {
	entries := make([]domain.JournalEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, domain.JournalEntry{
			Debit:  domain.Account(e.Debit),
			Credit: domain.Account(e.Credit),
			Amount: e.Amount,
		})
	}
	return entries
}

// ReconciliationRequest carries journal activity and opening balances.
type ReconciliationRequest = feed.ReconciliationDocument

// ReconciliationInput converts a reconciliation document to use case input.
func ReconciliationInput(r *ReconciliationRequest) usecase.ReconcileInput {
	return usecase.ReconcileInput{
		Entries:       r.Inputs(),
		Opening:       r.Opening,
		DefaultNature: r.DefaultNature,
	}
}
