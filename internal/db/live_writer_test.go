package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"lolstats/internal/live"
)

func TestSlotRows(t *testing.T) {
	cur := &live.Snapshot{GameTime: 620}
	prev := &live.Snapshot{GameTime: 1800, Ended: true}

	assert.Empty(t, SlotRows("p", &live.State{Phase: live.PhaseNoGame}))

	rows := SlotRows("p", &live.State{Phase: live.PhaseGameActive, Current: cur, LastValid: cur})
	assert.Equal(t, []LiveSlotRow{
		{PUUID: "p", Slot: SlotCurrent, Phase: "gameActive", Snapshot: cur},
	}, rows)

	rows = SlotRows("p", &live.State{Phase: live.PhaseGameActive, Current: cur, Previous: prev, LastValid: cur})
	assert.Len(t, rows, 2)
	assert.Equal(t, SlotPrevious, rows[1].Slot)
	assert.Same(t, prev, rows[1].Snapshot)
}

func TestLiveWriterSkipsUnchangedState(t *testing.T) {
	w := NewLiveWriter(nil, "p")
	state := &live.State{Phase: live.PhaseNoGame}

	// nothing to persist, so no pool access happens
	assert.NoError(t, w.WriteState(context.Background(), state))
	assert.NoError(t, w.WriteState(context.Background(), state))
	assert.NoError(t, w.WriteState(context.Background(), nil))
}
