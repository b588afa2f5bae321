// Package cli implements ledgerctl, the command an external scheduler uses to
// run the monthly archive and the daily snapshot.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SscSPs/caisse_ledger/internal/app"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/platform/config"
	"github.com/spf13/cobra"
)

// Opener builds the ledger for one command invocation.
type Opener func(ctx context.Context) (*app.App, *config.Config, error)

// DefaultOpener loads configuration from the environment and connects storage.
func DefaultOpener(logger *slog.Logger) Opener {
	return func(ctx context.Context) (*app.App, *config.Config, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return a, cfg, nil
	}
}

// NewRootCommand assembles ledgerctl and its subcommands.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the cash and bank ledger",
		Long:          "ledgerctl runs ledger jobs (monthly archive, daily snapshot) and maintenance tasks against the configured database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("user", "scheduler", "User recorded as the author of changes")

	root.AddCommand(
		newArchiveCommand(open),
		newSnapshotCommand(open),
		newResetCommand(open),
		newTokenCommand(),
	)
	return root
}

// Execute runs ledgerctl with os.Args.
func Execute(logger *slog.Logger) int {
	root := NewRootCommand(DefaultOpener(logger))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// withApp opens the ledger, runs fn and releases it.
func withApp(cmd *cobra.Command, open Opener, fn func(ctx context.Context, a *app.App, cfg *config.Config) error) error {
	ctx := cmd.Context()
	a, cfg, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportResult prints the report and fails the command when any account failed.
func reportResult(cmd *cobra.Command, report *domain.JobReport) error {
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%s: %d of %d accounts failed", report.Job, failed, len(report.Results))
	}
	return nil
}
