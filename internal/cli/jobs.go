package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/app"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/SscSPs/caisse_ledger/internal/middleware"
	"github.com/SscSPs/caisse_ledger/internal/platform/config"
	"github.com/SscSPs/caisse_ledger/internal/utils/mapping"
	"github.com/spf13/cobra"
)

func newArchiveCommand(open Opener) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive and reset every account for a month",
		Long: `Archive every cash drawer and bank account for the given month, then reset it.
Without flags the previous month in the ledger time zone is archived.
Accounts are processed independently; the command fails if any account failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			return withApp(cmd, open, func(ctx context.Context, a *app.App, cfg *config.Config) error {
				period := domain.PeriodOf(time.Now().In(cfg.Location).AddDate(0, -1, 0))
				if year != 0 {
					period.Year = year
				}
				if month != 0 {
					period.Month = time.Month(month)
				}
				report, err := a.Services.Archive.RunMonthlyArchive(ctx, period, user)
				if err != nil {
					return err
				}
				return reportResult(cmd, report)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year of the closing month")
	cmd.Flags().IntVar(&month, "month", 0, "Closing month (1-12)")
	return cmd
}

func newSnapshotCommand(open Opener) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the daily history of every account",
		Long:  "Record start and end balances for every account for one calendar day. Re-running the same day overwrites the records.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App, cfg *config.Config) error {
				day := time.Now().In(cfg.Location)
				if date != "" {
					parsed, err := time.ParseInLocation(mapping.DateLayout, date, cfg.Location)
					if err != nil {
						return fmt.Errorf("invalid --date %q: %w", date, err)
					}
					day = parsed
				}
				report, err := a.Services.DailyHistory.RunDailySnapshot(ctx, day)
				if err != nil {
					return err
				}
				return reportResult(cmd, report)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to snapshot (YYYY-MM-DD), defaults to today")
	return cmd
}

// parseKind accepts the enum value or the URL segment of an account kind.
func parseKind(raw string) (domain.AccountKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash_drawer", "cash-drawer", "cash-drawers":
		return domain.CashDrawer, nil
	case "bank_account", "bank-account", "bank-accounts":
		return domain.BankAccount, nil
	}
	return "", fmt.Errorf("unknown account kind %q", raw)
}

func newResetCommand(open Opener) *cobra.Command {
	var kind, id string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset one account without archiving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			return withApp(cmd, open, func(ctx context.Context, a *app.App, _ *config.Config) error {
				account, err := a.Services.Account.ResetAccount(ctx, domain.AccountRef{Kind: k, ID: id}, user)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.ToAccountResponse(account))
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "cash-drawer or bank-account")
	cmd.Flags().StringVar(&id, "id", "", "Account ID")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for --user",
		Long:  "Issue a bearer token signed with JWT_SECRET, for schedulers that call the HTTP job endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			if ttl <= 0 {
				ttl = cfg.JWTExpiryDuration
			}
			token, err := middleware.IssueToken(cfg.JWTSecret, user, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to JWT_EXPIRY_DURATION")
	return cmd
}
