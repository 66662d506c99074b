package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/boddenberg/campus-budget-coach/internal/cli"
	"github.com/boddenberg/campus-budget-coach/internal/infra/sqlite"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath string
		userID string
		month  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build the spending report of a month from the local ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" {
				if _, err := spending.ParseMonth(month); err != nil {
					return err
				}
			}

			store, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if month == "" {
				if month, err = store.LatestMonth(ctx, userID); err != nil {
					return err
				}
				if month == "" {
					month = spending.MonthOf(time.Now())
				}
			}

			txs, err := store.ListTransactions(ctx, userID, month)
			if err != nil {
				return err
			}
			report := spending.Aggregate(month, txs, spending.DefaultOptions())
			report.UserID = userID
			return opts.print(cmd.OutOrStdout(), report, func() string { return cli.RenderSpending(report) })
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "data/coach.db", "SQLite ledger path")
	cmd.Flags().StringVar(&userID, "user", "dev-user", "User whose transactions are analyzed")
	cmd.Flags().StringVar(&month, "month", "", "Month to analyze (YYYY-MM, defaults to the latest month with data)")
	return cmd
}
