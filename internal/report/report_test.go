package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolstats/internal/aggregate"
	"lolstats/internal/db"
)

func TestPrintBucketTable(t *testing.T) {
	analyzer := aggregate.NewAnalyzer(aggregate.StaticItems{}, aggregate.DefaultOptions())
	set, err := analyzer.Analyze([]aggregate.MatchInput{{
		MatchID:  "M1",
		PlayerID: 4,
		Outcome:  aggregate.OutcomeWin,
		Events: []aggregate.Event{
			{Kind: aggregate.EventChampionKill, Timestamp: 100, KillerID: 4, VictimID: 9},
		},
	}})
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintBucketTable(&buf, &set.Averages, aggregate.BucketPlayer)
	out := buf.String()

	assert.Contains(t, out, "1.00 @1:40")
	assert.Contains(t, out, "surrenderLoss")
	assert.Contains(t, out, "-")
}

func TestPrintOutcomeTable(t *testing.T) {
	var buf bytes.Buffer
	PrintOutcomeTable(&buf, []db.OutcomeSummary{
		{Outcome: aggregate.OutcomeLoss, Matches: 3, AvgKills: 2.333, AvgDeaths: 6, AvgAssists: 4.5, AvgItemGold: 9120.4},
	})
	out := buf.String()

	assert.Contains(t, out, "loss")
	assert.Contains(t, out, "2.3")
	assert.Contains(t, out, "9120")
}

func TestPrintRunHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintRunHeader(&buf, &db.StoredRun{
		ID:       uuid.MustParse("8d7c1f2e-6a55-4a3b-9c39-0f3b1a9d2e10"),
		PUUID:    "p1",
		Computed: time.Date(2024, 3, 9, 18, 5, 0, 0, time.UTC),
		Matches:  18,
		Skipped:  []string{"a", "b"},
	})

	assert.Contains(t, buf.String(), "Computed: 2024-03-09 18:05")
	assert.Contains(t, buf.String(), "Matches: 18  |  Skipped: 2")
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", clock(0))
	assert.Equal(t, "1:40", clock(100.7))
	assert.Equal(t, "32:05", clock(1925))
}
