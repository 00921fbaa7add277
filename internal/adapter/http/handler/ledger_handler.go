package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/revrec/internal/adapter/http/dto"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// LedgerService defines the ledger reads used by LedgerHandler.
type LedgerService interface {
	TrialBalance(ctx context.Context, contractID string) (*usecase.TrialBalanceOutput, error)
	Summarize(entries []domain.JournalEntry) *usecase.TrialBalanceOutput
	ListEntries(ctx context.Context, contractID string, limit, offset int) ([]*domain.PostedEntry, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger reads.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Entries lists a contract's persisted journal entries.
func (h *LedgerHandler) Entries(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")
	if contractID == "" {
		writeError(w, http.StatusBadRequest, "missing contract ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListEntries(r.Context(), contractID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PostedEntriesFromDomain(entries))
}

// TrialBalance returns the trial balance of a posted contract.
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")
	if contractID == "" {
		writeError(w, http.StatusBadRequest, "missing contract ID", "")
		return
	}

	out, err := h.ledgerUC.TrialBalance(r.Context(), contractID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceResponse{
		ContractID:   out.ContractID,
		TrialBalance: dto.TrialBalanceFromDomain(out.TrialBalance),
		Totals:       dto.TotalsFromDomain(out.Totals),
	})
}

// Summarize aggregates the journal entries in the request body.
func (h *LedgerHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req dto.TrialBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out := h.ledgerUC.Summarize(req.ToDomain())

	writeJSON(w, http.StatusOK, dto.TrialBalanceResponse{
		TrialBalance: dto.TrialBalanceFromDomain(out.TrialBalance),
		Totals:       dto.TotalsFromDomain(out.Totals),
	})
}

// CheckConsistency checks that the stored ledger's debits equal its credits.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			resp := dto.ConsistencyFromUseCase(report)
			resp.Message = err.Error()
			writeJSON(w, http.StatusConflict, resp)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromUseCase(report))
}
