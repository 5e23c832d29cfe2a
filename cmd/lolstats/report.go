package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lolstats/internal/aggregate"
	"lolstats/internal/db"
	"lolstats/internal/report"
)

var (
	reportBucket string
	reportJSON   bool
)

var reportCmd = &cobra.Command{
	Use:   "report <puuid>",
	Short: "Show the latest stored analysis of a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportBucket, "bucket", aggregate.BucketPlayer.String(), "bucket to tabulate (playerStats, teamStats, enemyStats)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the full average table as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	bucket, err := aggregate.ParseBucket(reportBucket)
	if err != nil {
		return err
	}
	if cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	reader := db.NewAverageReader(pool)
	run, err := reader.LatestRun(ctx, args[0])
	if errors.Is(err, db.ErrNoRun) {
		fmt.Fprintf(os.Stdout, "No analysis stored for %s. Run 'lolstats enqueue %s' first.\n", args[0], args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("read run: %w", err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run.Averages)
	}

	report.PrintRunHeader(os.Stdout, run)

	summaries, err := reader.OutcomeSummaries(ctx, args[0])
	if err != nil {
		return fmt.Errorf("read outcome summary: %w", err)
	}
	fmt.Fprintf(os.Stdout, "--- Outcomes ---\n\n")
	report.PrintOutcomeTable(os.Stdout, summaries)

	fmt.Fprintf(os.Stdout, "\n--- %s ---\n\n", bucket)
	report.PrintBucketTable(os.Stdout, &run.Averages, bucket)
	return nil
}
