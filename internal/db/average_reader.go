package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lolstats/internal/aggregate"
)

// ErrNoRun is returned when a player has never been analyzed.
var ErrNoRun = errors.New("no analysis run stored for player")

// StoredRun is the latest analysis run of a player, read back from the database.
type StoredRun struct {
	ID       uuid.UUID
	PUUID    string
	Computed time.Time
	Matches  int
	Skipped  []string
	Averages aggregate.AverageTable
}

// OutcomeSummary is one row of the per-player outcome summary view.
type OutcomeSummary struct {
	Outcome     aggregate.Outcome
	Matches     int
	AvgKills    float64
	AvgDeaths   float64
	AvgAssists  float64
	AvgItemGold float64
}

// AverageReader provides read-only access to stored analysis runs.
type AverageReader struct {
	pool *pgxpool.Pool
}

// NewAverageReader creates a new average reader.
func NewAverageReader(pool *pgxpool.Pool) *AverageReader {
	return &AverageReader{pool: pool}
}

// LatestRun retrieves the most recent run of a player with its full average table.
func (r *AverageReader) LatestRun(ctx context.Context, puuid string) (*StoredRun, error) {
	run := &StoredRun{PUUID: puuid}

	err := r.pool.QueryRow(ctx, `
		SELECT id, computed_at, matches, skipped
		FROM analysis_runs
		WHERE puuid = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`, puuid).Scan(&run.ID, &run.Computed, &run.Matches, &run.Skipped)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	averages, err := r.getAverages(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("get averages: %w", err)
	}
	run.Averages = averages

	return run, nil
}

// getAverages rebuilds the average table of a run. Bucket/outcome pairs with no row
// stay as empty series.
func (r *AverageReader) getAverages(ctx context.Context, runID uuid.UUID) (aggregate.AverageTable, error) {
	var table aggregate.AverageTable
	for _, b := range aggregate.Buckets {
		for _, o := range aggregate.Outcomes {
			table[b][o] = aggregate.Average(nil)
		}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT bucket, outcome, payload
		FROM averaged_stats
		WHERE run_id = $1
	`, runID)
	if err != nil {
		return table, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bucketName, outcomeName string
			payload                 []byte
		)
		if err := rows.Scan(&bucketName, &outcomeName, &payload); err != nil {
			return table, err
		}
		if err := decodeAverage(&table, bucketName, outcomeName, payload); err != nil {
			return table, err
		}
	}
	return table, rows.Err()
}

func decodeAverage(table *aggregate.AverageTable, bucketName, outcomeName string, payload []byte) error {
	b, err := aggregate.ParseBucket(bucketName)
	if err != nil {
		return err
	}
	o, err := aggregate.ParseOutcome(outcomeName)
	if err != nil {
		return err
	}
	var stats aggregate.AveragedStats
	if err := stats.UnmarshalJSON(payload); err != nil {
		return fmt.Errorf("decode %s/%s: %w", bucketName, outcomeName, err)
	}
	table[b][o] = stats
	return nil
}

// OutcomeSummaries reads the per-outcome summary view of a player, ordered by outcome.
func (r *AverageReader) OutcomeSummaries(ctx context.Context, puuid string) ([]OutcomeSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT outcome, matches, avg_kills, avg_deaths, avg_assists, avg_item_gold
		FROM mv_player_outcome_summary
		WHERE puuid = $1
	`, puuid)
	if err != nil {
		return nil, fmt.Errorf("query outcome summary: %w", err)
	}
	defer rows.Close()

	byOutcome := make(map[aggregate.Outcome]OutcomeSummary)
	for rows.Next() {
		var (
			name string
			s    OutcomeSummary
		)
		if err := rows.Scan(&name, &s.Matches, &s.AvgKills, &s.AvgDeaths, &s.AvgAssists, &s.AvgItemGold); err != nil {
			return nil, err
		}
		if s.Outcome, err = aggregate.ParseOutcome(name); err != nil {
			return nil, err
		}
		byOutcome[s.Outcome] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]OutcomeSummary, 0, len(byOutcome))
	for _, o := range aggregate.Outcomes {
		if s, ok := byOutcome[o]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
