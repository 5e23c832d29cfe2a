package aggregate

import (
	"errors"
	"time"

	"lolstats/internal/logging"
)

var (
	// ErrNoGamesFound is returned when the history handed to Analyze is empty.
	ErrNoGamesFound = errors.New("no games found")
	// ErrNoMatchesAnalyzed is returned when every match of the history was skipped.
	ErrNoMatchesAnalyzed = errors.New("no match could be analyzed")
)

// AnalysisSet holds everything produced by one historical analysis run.
type AnalysisSet struct {
	Records  []*MatchRecord
	Skipped  []string
	Table    CategoryTable
	Averages AverageTable
	Computed time.Time
}

// Analyze folds every match into its bucket triple, groups the records by outcome and
// averages every category. Matches that cannot be attributed to a participant are
// skipped with a warning and never reach the category table.
func (a *Analyzer) Analyze(matches []MatchInput) (*AnalysisSet, error) {
	if len(matches) == 0 {
		return nil, ErrNoGamesFound
	}

	set := &AnalysisSet{
		Records:  make([]*MatchRecord, 0, len(matches)),
		Computed: time.Now().UTC(),
	}

	// Step 1: per-match folds, each with its own component ledger
	for _, m := range matches {
		rec, err := a.AnalyzeMatch(m)
		if err != nil {
			logging.Logger().Warnf("skipping match %s: %v", m.MatchID, err)
			set.Skipped = append(set.Skipped, m.MatchID)
			continue
		}
		set.Records = append(set.Records, rec)
	}
	if len(set.Records) == 0 {
		return nil, ErrNoMatchesAnalyzed
	}

	// Step 2: categories are rebuilt from the full record set
	set.Table = BuildCategoryTable(set.Records)

	// Step 3: index-aligned averages per bucket and category
	set.Averages = AverageAll(set.Table)

	return set, nil
}
