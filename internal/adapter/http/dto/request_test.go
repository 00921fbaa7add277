package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/domain"
)

func TestBatchPostingRequest_ToUseCaseInput(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &BatchPostingRequest{
		Contracts: []ContractEvents{
			{ContractID: "c-1", Events: []feed.EventRecord{{Kind: "invoice", At: at, Amount: decimal.NewFromInt(100)}}},
			{ContractID: "c-2", Events: []feed.EventRecord{{Kind: "refund", At: at, Amount: decimal.NewFromInt(5)}}},
		},
	}

	got := req.ToUseCaseInput()
	if len(got) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(got))
	}
	if got[0].ContractID != "c-1" || got[1].ContractID != "c-2" {
		t.Fatalf("contract order not preserved: %+v", got)
	}
	if got[0].Events[0].Kind != domain.EventKindInvoice || !got[0].Events[0].OccurredAt.Equal(at) {
		t.Fatalf("unexpected event %+v", got[0].Events[0])
	}
	if got[1].Events[0].Kind != domain.EventKind("refund") {
		t.Fatalf("unknown kinds must pass through, got %q", got[1].Events[0].Kind)
	}
}

func TestTrialBalanceRequest_ToDomain(t *testing.T) {
	req := &TrialBalanceRequest{
		Entries: []JournalEntryItem{
			{Debit: string(domain.AccountCash), Credit: string(domain.AccountReceivable), Amount: decimal.NewFromInt(60)},
		},
	}

	got := req.ToDomain()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Debit != domain.AccountCash || got[0].Credit != domain.AccountReceivable {
		t.Fatalf("unexpected accounts %+v", got[0])
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected amount 60, got %s", got[0].Amount)
	}
}

func TestReconciliationInput(t *testing.T) {
	req := &ReconciliationRequest{
		Entries: []feed.ReconciliationRecord{
			{EntryType: "revenue", Amount: decimal.NewFromInt(10)},
		},
		Opening:       map[string]decimal.Decimal{"revenue": decimal.NewFromInt(3)},
		DefaultNature: "credit",
	}

	got := ReconciliationInput(req)
	if len(got.Entries) != 1 || got.Entries[0].EntryType != "revenue" {
		t.Fatalf("unexpected entries %+v", got.Entries)
	}
	if !got.Opening["revenue"].Equal(decimal.NewFromInt(3)) {
		t.Fatalf("opening not carried over: %+v", got.Opening)
	}
	if got.DefaultNature != "credit" {
		t.Fatalf("expected default nature credit, got %q", got.DefaultNature)
	}
}
