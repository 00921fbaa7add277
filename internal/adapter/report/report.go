// Package report renders postings, trial balances, reconciliations and
// consistency checks as text tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iho/revrec/internal/adapter/http/dto"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat parses an output format name. An empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

// Posting writes the result of a posting pass.
func Posting(w io.Writer, format Format, p *dto.PostingResponse) error {
	if format == FormatJSON {
		return writeJSON(w, p)
	}

	if p.ContractID != "" {
		fmt.Fprintf(w, "Contract %s\n\n", p.ContractID)
	}

	fmt.Fprintln(w, "Journal entries")
	if len(p.Entries) == 0 {
		fmt.Fprintln(w, "(none)")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "#\tDATE\tKIND\tDEBIT\tCREDIT\tAMOUNT")
		for i, e := range p.Entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1, e.EventAt.Format(time.DateOnly), e.EventKind, e.Debit, e.Credit, e.Amount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	if err := trialBalance(w, p.TrialBalance, p.Totals); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Position")
	tw := newTable(w)
	fmt.Fprintf(tw, "Billed\t%s\n", p.Position.Billed)
	fmt.Fprintf(tw, "Collected\t%s\n", p.Position.Collected)
	fmt.Fprintf(tw, "Recognized\t%s\n", p.Position.Recognized)
	fmt.Fprintf(tw, "Contract asset\t%s\n", p.Position.ContractAsset)
	fmt.Fprintf(tw, "Contract liability\t%s\n", p.Position.ContractLiability)
	fmt.Fprintf(tw, "Receivable\t%s\n", p.Position.Receivable)
	if err := tw.Flush(); err != nil {
		return err
	}

	if p.Skipped > 0 {
		fmt.Fprintf(w, "\nSkipped %d events with non-positive amounts\n", p.Skipped)
	}

	return nil
}

// TrialBalance writes a trial balance with its totals.
func TrialBalance(w io.Writer, format Format, tb *dto.TrialBalanceResponse) error {
	if format == FormatJSON {
		return writeJSON(w, tb)
	}

	if tb.ContractID != "" {
		fmt.Fprintf(w, "Contract %s\n\n", tb.ContractID)
	}
	return trialBalance(w, tb.TrialBalance, tb.Totals)
}

// Reconciliation writes one roll-forward line per entry type.
func Reconciliation(w io.Writer, format Format, rec *dto.ReconciliationResponse) error {
	if format == FormatJSON {
		return writeJSON(w, rec)
	}

	fmt.Fprintln(w, "Reconciliation")
	if len(rec.Lines) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ENTRY TYPE\tNATURE\tOPENING\tDEBIT\tCREDIT\tCLOSING")
	for _, l := range rec.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.EntryType, l.Nature, l.Opening, l.Debit, l.Credit, l.Closing)
	}
	return tw.Flush()
}

// Consistency writes the result of a stored-ledger consistency check.
func Consistency(w io.Writer, format Format, c *dto.ConsistencyResponse) error {
	if format == FormatJSON {
		return writeJSON(w, c)
	}

	if c.Consistent {
		fmt.Fprintln(w, "Ledger is consistent")
	} else {
		fmt.Fprintln(w, "Ledger is INCONSISTENT")
		if c.Message != "" {
			fmt.Fprintln(w, c.Message)
		}
	}

	fmt.Fprintln(w)
	return trialBalance(w, c.TrialBalance, c.Totals)
}

func trialBalance(w io.Writer, lines []dto.AccountBalanceResponse, totals dto.TotalsResponse) error {
	fmt.Fprintln(w, "Trial balance")
	if len(lines) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}

	status := "balanced"
	if !totals.Balanced {
		status = "UNBALANCED"
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ACCOUNT\tDEBIT\tCREDIT\tNET")
	for _, b := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Account, b.Debit, b.Credit, b.Net)
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\n", totals.Debits, totals.Credits, status)
	return tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
