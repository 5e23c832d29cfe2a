package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lolstats/internal/live"
)

// Live slot names.
const (
	SlotCurrent  = "current"
	SlotPrevious = "previous"
)

// LiveSlotRow is one upserted row of live_game_slots.
type LiveSlotRow struct {
	PUUID    string
	Slot     string
	Phase    string
	Snapshot *live.Snapshot
}

// SlotRows returns the slots a state persists: the current snapshot and the frozen
// previous game, each only when present.
func SlotRows(puuid string, state *live.State) []LiveSlotRow {
	var rows []LiveSlotRow
	if state.Current != nil {
		rows = append(rows, LiveSlotRow{PUUID: puuid, Slot: SlotCurrent, Phase: state.Phase.String(), Snapshot: state.Current})
	}
	if state.Previous != nil {
		rows = append(rows, LiveSlotRow{PUUID: puuid, Slot: SlotPrevious, Phase: state.Phase.String(), Snapshot: state.Previous})
	}
	return rows
}

// LiveWriter persists the live session of one player.
type LiveWriter struct {
	pool  *pgxpool.Pool
	puuid string

	mu   sync.Mutex
	last *live.State
}

// NewLiveWriter creates a writer for the given player.
func NewLiveWriter(pool *pgxpool.Pool, puuid string) *LiveWriter {
	return &LiveWriter{pool: pool, puuid: puuid}
}

// WriteState upserts the slots of state. States are immutable, so a state already
// written is skipped.
func (w *LiveWriter) WriteState(ctx context.Context, state *live.State) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if state == nil || state == w.last {
		return nil
	}
	rows := SlotRows(w.puuid, state)
	if len(rows) == 0 {
		w.last = state
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		payload, err := json.Marshal(r.Snapshot)
		if err != nil {
			return fmt.Errorf("encode %s slot: %w", r.Slot, err)
		}
		batch.Queue(`
			INSERT INTO live_game_slots (puuid, slot, phase, game_time, taken_at, snapshot, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (puuid, slot) DO UPDATE
			SET phase = EXCLUDED.phase,
			    game_time = EXCLUDED.game_time,
			    taken_at = EXCLUDED.taken_at,
			    snapshot = EXCLUDED.snapshot,
			    updated_at = now()
		`, r.PUUID, r.Slot, r.Phase, r.Snapshot.GameTime, r.Snapshot.TakenAt, payload)
	}

	if err := w.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert live slots: %w", err)
	}
	w.last = state
	return nil
}
