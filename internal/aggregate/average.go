package aggregate

import (
	"encoding/json"
)

// CategoryTable groups finalized match records by outcome. It is always rebuilt from
// the full match set and never updated incrementally.
type CategoryTable [NumOutcomes][]*MatchRecord

// BuildCategoryTable groups records by outcome. Records with an outcome outside the four
// averaged categories (live games) are left out.
func BuildCategoryTable(records []*MatchRecord) CategoryTable {
	var table CategoryTable
	for _, o := range Outcomes {
		table[o] = []*MatchRecord{}
	}
	for _, r := range records {
		if r == nil || !r.Outcome.valid() {
			continue
		}
		table[r.Outcome] = append(table[r.Outcome], r)
	}
	return table
}

// Bucket returns the bucket records of one category, in match order.
func (t *CategoryTable) Bucket(o Outcome, b Bucket) []*BucketRecord {
	if !o.valid() {
		return nil
	}
	out := make([]*BucketRecord, 0, len(t[o]))
	for _, r := range t[o] {
		out = append(out, &r.Buckets[b])
	}
	return out
}

// AveragedStats is the index-aligned mean of every tracked sequence across the bucket
// records of one category. Element i of a series averages the i-th occurrence of the
// contributing records that have one; a series ends at the last index with a contributor.
type AveragedStats struct {
	Matches       int
	Occurrences   [NumStats][]float64
	KDA           []TimedValue
	ItemGold      []TimedValue
	TotalTimeDead []TimedValue
}

// Series returns the averaged occurrence times of one stat.
func (a *AveragedStats) Series(s Stat) []float64 {
	return a.Occurrences[s]
}

// Empty reports whether no match contributed.
func (a *AveragedStats) Empty() bool {
	return a.Matches == 0
}

// AverageTable holds the averaged stats of every bucket and outcome category.
type AverageTable [NumBuckets][NumOutcomes]AveragedStats

// Average computes the index-aligned mean of records. With no records every series
// is empty, not nil.
func Average(records []*BucketRecord) AveragedStats {
	out := AveragedStats{Matches: len(records)}

	occ := make([][]float64, len(records))
	for s := Stat(0); s < NumStats; s++ {
		for i, r := range records {
			occ[i] = r.Occurrences[s]
		}
		out.Occurrences[s] = averageSeries(occ)
	}

	kda := make([][]TimedValue, len(records))
	gold := make([][]TimedValue, len(records))
	dead := make([][]TimedValue, len(records))
	for i, r := range records {
		kda[i] = r.KDA
		gold[i] = itemGoldSeries(r)
		dead[i] = timeDeadSeries(r)
	}
	out.KDA = averageTimed(kda)
	out.ItemGold = averageTimed(gold)
	out.TotalTimeDead = averageTimed(dead)

	return out
}

// AverageCategories averages one bucket across every outcome category.
func AverageCategories(table CategoryTable, b Bucket) [NumOutcomes]AveragedStats {
	var out [NumOutcomes]AveragedStats
	for _, o := range Outcomes {
		out[o] = Average(table.Bucket(o, b))
	}
	return out
}

// AverageAll averages every bucket of every category.
func AverageAll(table CategoryTable) AverageTable {
	var out AverageTable
	for _, b := range Buckets {
		out[b] = AverageCategories(table, b)
	}
	return out
}

func itemGoldSeries(r *BucketRecord) []TimedValue {
	out := make([]TimedValue, len(r.Items))
	for i, p := range r.Items {
		out[i] = TimedValue{Timestamp: p.Timestamp, Value: p.TotalGold}
	}
	return out
}

func timeDeadSeries(r *BucketRecord) []TimedValue {
	deaths := r.Occurrences[StatDeaths]
	n := min(len(deaths), len(r.TotalTimeDead))
	out := make([]TimedValue, n)
	for i := 0; i < n; i++ {
		out[i] = TimedValue{Timestamp: deaths[i], Value: r.TotalTimeDead[i]}
	}
	return out
}

func averageSeries(seqs [][]float64) []float64 {
	out := []float64{}
	for i := 0; ; i++ {
		var sum float64
		var n int
		for _, s := range seqs {
			if i < len(s) {
				sum += s[i]
				n++
			}
		}
		if n == 0 {
			return out
		}
		out = append(out, sum/float64(n))
	}
}

// averageTimed averages timestamp and value independently at each index.
func averageTimed(seqs [][]TimedValue) []TimedValue {
	out := []TimedValue{}
	for i := 0; ; i++ {
		var ts, v float64
		var n int
		for _, s := range seqs {
			if i < len(s) {
				ts += s[i].Timestamp
				v += s[i].Value
				n++
			}
		}
		if n == 0 {
			return out
		}
		out = append(out, TimedValue{Timestamp: ts / float64(n), Value: v / float64(n)})
	}
}

type averagedStatsJSON struct {
	Matches       int                  `json:"matches"`
	Occurrences   map[string][]float64 `json:"occurrences"`
	KDA           []TimedValue         `json:"kda"`
	ItemGold      []TimedValue         `json:"itemGold"`
	TotalTimeDead []TimedValue         `json:"totalTimeSpentDead"`
}

// MarshalJSON encodes the stats with stat names as keys.
func (a AveragedStats) MarshalJSON() ([]byte, error) {
	out := averagedStatsJSON{
		Matches:       a.Matches,
		Occurrences:   make(map[string][]float64, NumStats),
		KDA:           nonNil(a.KDA),
		ItemGold:      nonNil(a.ItemGold),
		TotalTimeDead: nonNil(a.TotalTimeDead),
	}
	for s := Stat(0); s < NumStats; s++ {
		out.Occurrences[s.String()] = nonNil(a.Occurrences[s])
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the shape written by MarshalJSON.
func (a *AveragedStats) UnmarshalJSON(data []byte) error {
	var in averagedStatsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = AveragedStats{
		Matches:       in.Matches,
		KDA:           nonNil(in.KDA),
		ItemGold:      nonNil(in.ItemGold),
		TotalTimeDead: nonNil(in.TotalTimeDead),
	}
	for s := Stat(0); s < NumStats; s++ {
		a.Occurrences[s] = []float64{}
	}
	for name, values := range in.Occurrences {
		s, err := parseStat(name)
		if err != nil {
			return err
		}
		a.Occurrences[s] = nonNil(values)
	}
	return nil
}

// MarshalJSON encodes the table as bucket name -> outcome name -> stats.
func (t AverageTable) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]AveragedStats, NumBuckets)
	for _, b := range Buckets {
		byOutcome := make(map[string]AveragedStats, NumOutcomes)
		for _, o := range Outcomes {
			byOutcome[o.String()] = t[b][o]
		}
		out[b.String()] = byOutcome
	}
	return json.Marshal(out)
}
