package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"lolstats/internal/aggregate"
	"lolstats/internal/db"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintRunHeader prints a one-line summary of a stored run.
func PrintRunHeader(w io.Writer, run *db.StoredRun) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Run: %s  |  Computed: %s  |  Matches: %d  |  Skipped: %d\n\n",
		run.PUUID, run.ID, run.Computed.Format("2006-01-02 15:04"), run.Matches, len(run.Skipped))
}

// PrintOutcomeTable prints per-outcome match counts and per-match means.
func PrintOutcomeTable(w io.Writer, summaries []db.OutcomeSummary) {
	table := newTable(w)
	table.Header("OUTCOME", "MATCHES", "K", "D", "A", "ITEM_GOLD")
	for _, s := range summaries {
		table.Append(
			s.Outcome.String(),
			strconv.Itoa(s.Matches),
			fmt.Sprintf("%.1f", s.AvgKills),
			fmt.Sprintf("%.1f", s.AvgDeaths),
			fmt.Sprintf("%.1f", s.AvgAssists),
			fmt.Sprintf("%.0f", s.AvgItemGold),
		)
	}
	table.Render()
}

// PrintBucketTable prints, for one bucket, the averaged series of every outcome:
// the series lengths of the combat stats and the end values of the compound series.
func PrintBucketTable(w io.Writer, averages *aggregate.AverageTable, b aggregate.Bucket) {
	table := newTable(w)
	table.Header("OUTCOME", "MATCHES", "K", "D", "A", "TOWERS", "DRAGONS", "BARONS", "KDA_END", "GOLD_END", "DEAD_END")
	for _, o := range aggregate.Outcomes {
		stats := &averages[b][o]
		table.Append(
			o.String(),
			strconv.Itoa(stats.Matches),
			strconv.Itoa(len(stats.Series(aggregate.StatKills))),
			strconv.Itoa(len(stats.Series(aggregate.StatDeaths))),
			strconv.Itoa(len(stats.Series(aggregate.StatAssists))),
			strconv.Itoa(len(stats.Series(aggregate.StatTurretKills))),
			strconv.Itoa(len(stats.Series(aggregate.StatDragonKills))),
			strconv.Itoa(len(stats.Series(aggregate.StatBaronKills))),
			formatEnd(stats.KDA, "%.2f"),
			formatEnd(stats.ItemGold, "%.0f"),
			formatEnd(stats.TotalTimeDead, "%.0fs"),
		)
	}
	table.Render()
}

// formatEnd renders the last value of a timed series, or a dash when it is empty.
func formatEnd(series []aggregate.TimedValue, format string) string {
	if len(series) == 0 {
		return "-"
	}
	last := series[len(series)-1]
	return fmt.Sprintf(format+" @%s", last.Value, clock(last.Timestamp))
}

func clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
