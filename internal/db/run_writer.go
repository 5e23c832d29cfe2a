package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lolstats/internal/aggregate"
)

// MatchRecordRow is one analyzed match as stored in match_records.
type MatchRecordRow struct {
	ID       uuid.UUID
	RunID    uuid.UUID
	PUUID    string
	MatchID  string
	PlayerID int
	Outcome  string
	Kills    int
	Deaths   int
	Assists  int
	ItemGold float64
	Buckets  []byte
}

// AveragedStatsRow is one bucket/outcome average as stored in averaged_stats.
type AveragedStatsRow struct {
	RunID   uuid.UUID
	PUUID   string
	Bucket  string
	Outcome string
	Matches int
	Payload []byte
}

// RunRows is the flattened form of an analysis run.
type RunRows struct {
	RunID    uuid.UUID
	PUUID    string
	Computed time.Time
	Skipped  []string
	Matches  []MatchRecordRow
	Averages []AveragedStatsRow
}

// BuildRunRows flattens an analysis set into table rows under a fresh run id.
func BuildRunRows(puuid string, set *aggregate.AnalysisSet) (*RunRows, error) {
	rows := &RunRows{
		RunID:    uuid.New(),
		PUUID:    puuid,
		Computed: set.Computed,
		Skipped:  set.Skipped,
	}
	if rows.Skipped == nil {
		rows.Skipped = []string{}
	}

	for _, rec := range set.Records {
		buckets, err := json.Marshal(rec.Buckets)
		if err != nil {
			return nil, fmt.Errorf("encode buckets of %s: %w", rec.MatchID, err)
		}
		player := &rec.Buckets[aggregate.BucketPlayer]
		rows.Matches = append(rows.Matches, MatchRecordRow{
			ID:       uuid.New(),
			RunID:    rows.RunID,
			PUUID:    puuid,
			MatchID:  rec.MatchID,
			PlayerID: rec.PlayerID,
			Outcome:  rec.Outcome.String(),
			Kills:    player.Count(aggregate.StatKills),
			Deaths:   player.Count(aggregate.StatDeaths),
			Assists:  player.Count(aggregate.StatAssists),
			ItemGold: player.TotalGold(),
			Buckets:  buckets,
		})
	}

	for _, b := range aggregate.Buckets {
		for _, o := range aggregate.Outcomes {
			stats := set.Averages[b][o]
			payload, err := json.Marshal(stats)
			if err != nil {
				return nil, fmt.Errorf("encode %s/%s averages: %w", b, o, err)
			}
			rows.Averages = append(rows.Averages, AveragedStatsRow{
				RunID:   rows.RunID,
				PUUID:   puuid,
				Bucket:  b.String(),
				Outcome: o.String(),
				Matches: stats.Matches,
				Payload: payload,
			})
		}
	}
	return rows, nil
}

// RunWriter persists analysis runs.
type RunWriter struct {
	pool *pgxpool.Pool
}

// NewRunWriter creates a new run writer.
func NewRunWriter(pool *pgxpool.Pool) *RunWriter {
	return &RunWriter{pool: pool}
}

// WriteRun stores an analysis set as the player's latest run within a single transaction.
// Earlier runs of the same player are purged first, so a redelivered job leaves one run behind.
func (w *RunWriter) WriteRun(ctx context.Context, puuid string, set *aggregate.AnalysisSet) (uuid.UUID, error) {
	rows, err := BuildRunRows(puuid, set)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Serialize writers of the same player
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(puuid)); err != nil {
		return uuid.Nil, fmt.Errorf("acquire player lock: %w", err)
	}

	// 2. Purge existing runs (reverse FK order)
	if err := purgeRuns(ctx, tx, puuid); err != nil {
		return uuid.Nil, fmt.Errorf("purge runs: %w", err)
	}

	// 3. Insert new data (FK order)
	if _, err := tx.Exec(ctx, `
		INSERT INTO analysis_runs (id, puuid, computed_at, matches, skipped)
		VALUES ($1, $2, $3, $4, $5)
	`, rows.RunID, rows.PUUID, rows.Computed, len(rows.Matches), rows.Skipped); err != nil {
		return uuid.Nil, fmt.Errorf("insert analysis run: %w", err)
	}

	if err := insertMatchRecords(ctx, tx, rows.Matches); err != nil {
		return uuid.Nil, fmt.Errorf("insert match records: %w", err)
	}

	if err := insertAveragedStats(ctx, tx, rows.Averages); err != nil {
		return uuid.Nil, fmt.Errorf("insert averaged stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return rows.RunID, nil
}

// advisoryLockKey generates a stable int64 key from a player id for pg_advisory_xact_lock.
func advisoryLockKey(puuid string) int64 {
	h := fnv.New64a()
	h.Write([]byte(puuid))
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// purgeRuns deletes every stored run of a player.
func purgeRuns(ctx context.Context, tx pgx.Tx, puuid string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM averaged_stats WHERE puuid = $1`, puuid); err != nil {
		return fmt.Errorf("purge averaged_stats: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM match_records WHERE puuid = $1`, puuid); err != nil {
		return fmt.Errorf("purge match_records: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM analysis_runs WHERE puuid = $1`, puuid); err != nil {
		return fmt.Errorf("purge analysis_runs: %w", err)
	}
	return nil
}

// insertMatchRecords inserts match rows using COPY protocol.
func insertMatchRecords(ctx context.Context, tx pgx.Tx, rows []MatchRecordRow) error {
	if len(rows) == 0 {
		return nil
	}

	columns := []string{
		"id", "run_id", "puuid", "match_id", "player_id", "outcome",
		"kills", "deaths", "assists", "item_gold", "buckets",
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"match_records"},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				r.ID, r.RunID, r.PUUID, r.MatchID, r.PlayerID, r.Outcome,
				r.Kills, r.Deaths, r.Assists, r.ItemGold, r.Buckets,
			}, nil
		}),
	)
	return err
}

// insertAveragedStats inserts average rows using COPY protocol.
func insertAveragedStats(ctx context.Context, tx pgx.Tx, rows []AveragedStatsRow) error {
	if len(rows) == 0 {
		return nil
	}

	columns := []string{"run_id", "puuid", "bucket", "outcome", "matches", "payload"}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"averaged_stats"},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.RunID, r.PUUID, r.Bucket, r.Outcome, r.Matches, r.Payload}, nil
		}),
	)
	return err
}
