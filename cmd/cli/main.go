package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/adapter/http/dto"
	"github.com/iho/revrec/internal/adapter/report"
	"github.com/iho/revrec/internal/infrastructure/config"
	"github.com/iho/revrec/internal/infrastructure/postgres"
	"github.com/iho/revrec/internal/usecase"
)

// Migration runners, replaced in tests.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

// errInconsistent makes the process exit non-zero after the report is printed.
var errInconsistent = errors.New("ledger is inconsistent")

type options struct {
	baseURL string
	timeout time.Duration
	output  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "revrec",
		Short:         "Revenue recognition CLI tool",
		Long:          `Post contract events, reconcile balances and check the stored ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the revrec API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(
		postCmd(opts),
		reconcileCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func postCmd(opts *options) *cobra.Command {
	var contractID string

	cmd := &cobra.Command{
		Use:   "post <file>",
		Short: "Post an event feed locally and print its journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			doc, err := readEventFeed(args[0])
			if err != nil {
				return err
			}

			uc := usecase.NewPostingUseCase(usecase.PostingConfig{Logger: zerolog.Nop()})
			out, err := uc.Preview(cmd.Context(), doc.DomainEvents())
			if err != nil {
				return err
			}

			out.ContractID = doc.ContractID
			if contractID != "" {
				out.ContractID = contractID
			}

			return report.Posting(cmd.OutOrStdout(), format, dto.PostingFromUseCase(out))
		},
	}

	cmd.Flags().StringVar(&contractID, "contract", "", "Contract ID shown in the report (overrides the feed)")
	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <file>",
		Short: "Roll opening balances forward over a reconciliation feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			doc, err := readReconciliationFeed(args[0])
			if err != nil {
				return err
			}

			uc := usecase.NewReconciliationUseCase(nil, zerolog.Nop())
			lines, err := uc.Reconcile(cmd.Context(), dto.ReconciliationInput(doc))
			if err != nil {
				return err
			}

			return report.Reconciliation(cmd.OutOrStdout(), format, dto.ReconciliationFromDomain(lines))
		},
	}
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that the stored ledger's debits equal its credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			var resp dto.ConsistencyResponse
			status, err := getJSON(cmd.Context(), opts, "/api/v1/ledger/consistency", &resp, http.StatusOK, http.StatusConflict)
			if err != nil {
				return err
			}

			if err := report.Consistency(cmd.OutOrStdout(), format, &resp); err != nil {
				return err
			}
			if status == http.StatusConflict || !resp.Consistent {
				return errInconsistent
			}
			return nil
		},
	}

	trialBalanceCmd := &cobra.Command{
		Use:   "trial-balance <contract-id>",
		Short: "Show the stored trial balance of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			var resp dto.TrialBalanceResponse
			path := "/api/v1/contracts/" + url.PathEscape(args[0]) + "/trial-balance"
			if _, err := getJSON(cmd.Context(), opts, path, &resp, http.StatusOK); err != nil {
				return err
			}

			return report.TrialBalance(cmd.OutOrStdout(), format, &resp)
		},
	}

	cmd.AddCommand(consistencyCmd, trialBalanceCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if path == "" {
				path = cfg.MigrationsPath
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := migrateUp(databaseURL, path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := migrateDown(databaseURL, path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration rolled back")
				return nil
			},
		},
	)

	return cmd
}

func readEventFeed(path string) (*feed.EventDocument, error) {
	format, err := feed.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return feed.DecodeEventDocument(f, format)
}

func readReconciliationFeed(path string) (*feed.ReconciliationDocument, error) {
	format, err := feed.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return feed.DecodeReconciliation(f, format)
}

// getJSON decodes the response body into v when the status is one of accepted
// and returns the status code.
func getJSON(ctx context.Context, opts *options, path string, v any, accepted ...int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	for _, code := range accepted {
		if resp.StatusCode == code {
			if err := json.Unmarshal(body, v); err != nil {
				return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
			}
			return resp.StatusCode, nil
		}
	}

	var apiErr dto.ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return resp.StatusCode, fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
	}
	return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
}
