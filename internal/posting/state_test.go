package posting

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/revrec/internal/domain"
)

func TestStateDerivedBalancesMirror(t *testing.T) {
	tests := []struct {
		name                          string
		billed, collected, recognized string
		asset, liability, receivable  string
	}{
		{"fresh", "0", "0", "0", "0", "0", "0"},
		{"billed ahead", "100", "40", "30", "0", "70", "60"},
		{"recognized ahead", "30", "0", "80", "50", "0", "30"},
		{"overcollected", "50", "80", "50", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state{
				billed:     decimal.RequireFromString(tt.billed),
				collected:  decimal.RequireFromString(tt.collected),
				recognized: decimal.RequireFromString(tt.recognized),
			}

			if got := s.contractAsset(); !got.Equal(decimal.RequireFromString(tt.asset)) {
				t.Fatalf("contractAsset() = %s, want %s", got, tt.asset)
			}
			if got := s.contractLiability(); !got.Equal(decimal.RequireFromString(tt.liability)) {
				t.Fatalf("contractLiability() = %s, want %s", got, tt.liability)
			}
			if got := s.openReceivable(); !got.Equal(decimal.RequireFromString(tt.receivable)) {
				t.Fatalf("openReceivable() = %s, want %s", got, tt.receivable)
			}

			// asset - liability always equals recognized - billed
			diff := s.contractAsset().Sub(s.contractLiability())
			if !diff.Equal(s.recognized.Sub(s.billed)) {
				t.Fatalf("derived balances do not mirror: %s vs %s", diff, s.recognized.Sub(s.billed))
			}
		})
	}
}

func TestStateApplyAdvancesOnlyItsTotal(t *testing.T) {
	var s state

	if _, err := s.apply(domain.Event{Kind: domain.EventKindInvoice, Amount: decimal.RequireFromString("10.005")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.apply(domain.Event{Kind: domain.EventKindCash, Amount: decimal.NewFromInt(4)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.billed.Equal(decimal.RequireFromString("10.01")) {
		t.Fatalf("expected billed rounded to 10.01, got %s", s.billed)
	}
	if !s.collected.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected collected 4, got %s", s.collected)
	}
	if !s.recognized.IsZero() {
		t.Fatalf("expected recognized untouched, got %s", s.recognized)
	}
}

func TestStateApplyRejectsUnknownKind(t *testing.T) {
	var s state

	entries, err := s.apply(domain.Event{Kind: "refund", Amount: decimal.NewFromInt(1)})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %v", entries)
	}
	if !s.billed.IsZero() || !s.collected.IsZero() || !s.recognized.IsZero() {
		t.Fatal("expected state to be unchanged")
	}
}
