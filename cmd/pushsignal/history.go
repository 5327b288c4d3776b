package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abdulachik/pushsignal/internal/db"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent deliveries",
	Long:  `List the most recent notification delivery attempts from the local log.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Number of deliveries to show (default HISTORY_LIMIT)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.HistoryLimit
	}

	total, err := store.CountDeliveries(ctx)
	if err != nil {
		return fmt.Errorf("count deliveries: %w", err)
	}

	deliveries, err := store.ListDeliveries(ctx, int64(limit))
	if err != nil {
		return fmt.Errorf("list deliveries: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Deliveries (%d of %d) ===\n\n", len(deliveries), total)

	for _, d := range deliveries {
		status := "-"
		if d.StatusCode.Valid {
			status = strconv.FormatInt(d.StatusCode.Int64, 10)
		}
		fmt.Fprintf(out, "%s  %s  status=%s  app=%s\n",
			d.CreatedAt.Format("2006-01-02 15:04:05"), d.ID, status, d.AppID)
		if d.Error.Valid {
			fmt.Fprintf(out, "  error: %s\n", d.Error.String)
		}
	}

	return nil
}
