package dto

import (
	"time"

	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	EventAt   time.Time `json:"event_at"`
	Debit     string    `json:"debit"`
	Credit    string    `json:"credit"`
	Amount    string    `json:"amount"`
	EventKind string    `json:"event_kind,omitempty"`
	EventKey  string    `json:"event_key,omitempty"`
}

// JournalEntryFromDomain converts a domain journal entry to response.
func JournalEntryFromDomain(e domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EventAt:   e.EventAt,
		Debit:     string(e.Debit),
		Credit:    string(e.Credit),
		Amount:    e.Amount.StringFixed(2),
		EventKind: string(e.EventKind),
		EventKey:  e.EventKey,
	}
}

// JournalEntriesFromDomain converts domain journal entries to responses.
func JournalEntriesFromDomain(entries []domain.JournalEntry) []JournalEntryResponse {
	result := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalEntryFromDomain(e)
	}
	return result
}

// PostedEntryResponse represents a persisted journal entry.
type PostedEntryResponse struct {
	ID         string    `json:"id"`
	ContractID string    `json:"contract_id"`
	Sequence   int64     `json:"sequence"`
	CreatedAt  time.Time `json:"created_at"`
	JournalEntryResponse
}

// PostedEntriesFromDomain converts persisted entries to responses.
func PostedEntriesFromDomain(entries []*domain.PostedEntry) []PostedEntryResponse {
	result := make([]PostedEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = PostedEntryResponse{
			ID:                   e.ID,
			ContractID:           e.ContractID,
			Sequence:             e.Sequence,
			CreatedAt:            e.CreatedAt,
			JournalEntryResponse: JournalEntryFromDomain(e.Entry),
		}
	}
	return result
}

// AccountBalanceResponse is one trial balance line.
type AccountBalanceResponse struct {
	Account string `json:"account"`
	Debit   string `json:"debit"`
	Credit  string `json:"credit"`
	Net     string `json:"net"`
}

// TrialBalanceFromDomain converts a trial balance to response lines.
func TrialBalanceFromDomain(tb domain.TrialBalance) []AccountBalanceResponse {
	result := make([]AccountBalanceResponse, len(tb))
	for i, b := range tb {
		result[i] = AccountBalanceResponse{
			Account: string(b.Account),
			Debit:   b.Debit.StringFixed(2),
			Credit:  b.Credit.StringFixed(2),
			Net:     b.Net.StringFixed(2),
		}
	}
	return result
}

// TotalsResponse represents debit and credit totals.
type TotalsResponse struct {
	Debits   string `json:"debits"`
	Credits  string `json:"credits"`
	Balanced bool   `json:"balanced"`
}

// TotalsFromDomain converts totals to response.
func TotalsFromDomain(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		Debits:   t.Debits.StringFixed(2),
		Credits:  t.Credits.StringFixed(2),
		Balanced: t.Balanced(),
	}
}

// PositionResponse represents a contract's standing after posting.
type PositionResponse struct {
	Billed            string `json:"billed"`
	Collected         string `json:"collected"`
	Recognized        string `json:"recognized"`
	ContractAsset     string `json:"contract_asset"`
	ContractLiability string `json:"contract_liability"`
	Receivable        string `json:"receivable"`
}

// PositionFromDomain converts a position to response.
func PositionFromDomain(p domain.Position) PositionResponse {
	return PositionResponse{
		Billed:            p.Billed.StringFixed(2),
		Collected:         p.Collected.StringFixed(2),
		Recognized:        p.Recognized.StringFixed(2),
		ContractAsset:     p.ContractAsset.StringFixed(2),
		ContractLiability: p.ContractLiability.StringFixed(2),
		Receivable:        p.Receivable.StringFixed(2),
	}
}

// PostingResponse represents the result of a posting pass.
type PostingResponse struct {
	ContractID   string                   `json:"contract_id,omitempty"`
	Entries      []JournalEntryResponse   `json:"entries"`
	TrialBalance []AccountBalanceResponse `json:"trial_balance"`
	Totals       TotalsResponse           `json:"totals"`
	Position     PositionResponse         `json:"position"`
	Skipped      int                      `json:"skipped"`
}

// PostingFromUseCase converts a posting output to response.
func PostingFromUseCase(out *usecase.PostingOutput) *PostingResponse {
	return &PostingResponse{
		ContractID:   out.ContractID,
		Entries:      JournalEntriesFromDomain(out.Entries),
		TrialBalance: TrialBalanceFromDomain(out.TrialBalance),
		Totals:       TotalsFromDomain(out.Totals),
		Position:     PositionFromDomain(out.Position),
		Skipped:      out.Skipped,
	}
}

// BatchResultResponse is the outcome of one contract in a batch.
type BatchResultResponse struct {
	ContractID string           `json:"contract_id"`
	Status     string           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Posting    *PostingResponse `json:"posting,omitempty"`
}

// BatchPostingResponse represents the outcome of a batch.
type BatchPostingResponse struct {
	Posted  int                   `json:"posted"`
	Failed  int                   `json:"failed"`
	Results []BatchResultResponse `json:"results"`
}

// BatchFromUseCase converts batch results to response.
func BatchFromUseCase(results []usecase.BatchResult) *BatchPostingResponse {
	resp := &BatchPostingResponse{Results: make([]BatchResultResponse, len(results))}
	for i, r := range results {
		if r.Err != nil {
			resp.Failed++
			resp.Results[i] = BatchResultResponse{ContractID: r.ContractID, Status: "failed", Error: r.Err.Error()}
			continue
		}
		resp.Posted++
		resp.Results[i] = BatchResultResponse{ContractID: r.ContractID, Status: "posted", Posting: PostingFromUseCase(r.Output)}
	}
	return resp
}

// TrialBalanceResponse represents a trial balance with totals.
type TrialBalanceResponse struct {
	ContractID   string                   `json:"contract_id,omitempty"`
	TrialBalance []AccountBalanceResponse `json:"trial_balance"`
	Totals       TotalsResponse           `json:"totals"`
}

// ReconciliationLineResponse is one roll-forward line.
type ReconciliationLineResponse struct {
	EntryType string `json:"entry_type"`
	Nature    string `json:"nature"`
	Opening   string `json:"opening"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
	Closing   string `json:"closing"`
}

// ReconciliationResponse represents a reconciliation.
type ReconciliationResponse struct {
	Lines []ReconciliationLineResponse `json:"lines"`
}

// ReconciliationFromDomain converts a reconciliation to response.
func ReconciliationFromDomain(rec domain.Reconciliation) *ReconciliationResponse {
	lines := make([]ReconciliationLineResponse, len(rec))
	for i, l := range rec {
		lines[i] = ReconciliationLineResponse{
			EntryType: l.EntryType,
			Nature:    string(l.Nature),
			Opening:   l.Opening.StringFixed(2),
			Debit:     l.Debit.StringFixed(2),
			Credit:    l.Credit.StringFixed(2),
			Closing:   l.Closing.StringFixed(2),
		}
	}
	return &ReconciliationResponse{Lines: lines}
}

// ConsistencyResponse represents the stored ledger consistency check.
type ConsistencyResponse struct {
	Status       string                   `json:"status"`
	Consistent   bool                     `json:"consistent"`
	Message      string                   `json:"message,omitempty"`
	TrialBalance []AccountBalanceResponse `json:"trial_balance"`
	Totals       TotalsResponse           `json:"totals"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(report *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !report.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:       status,
		Consistent:   report.Consistent,
		TrialBalance: TrialBalanceFromDomain(report.TrialBalance),
		Totals:       TotalsFromDomain(report.Totals),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
