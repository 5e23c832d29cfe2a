package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Occurrences holds the game-clock timestamps (seconds) of one stat within one match.
// Index i is always the (i+1)-th chronological occurrence, never a time bucket; the
// Cross-Match Averager joins matches on this index.
type Occurrences []float64

// At returns the i-th occurrence, reporting false when the match has fewer occurrences.
func (o Occurrences) At(i int) (float64, bool) {
	if i < 0 || i >= len(o) {
		return 0, false
	}
	return o[i], true
}

// BucketRecord holds every tracked sequence for one bucket of one match or live game.
// Each derived sequence has exactly one entry per contributing raw event:
// len(KDA) == kills+deaths+assists, len(DeathTimers) == len(TotalTimeDead) == deaths.
type BucketRecord struct {
	Occurrences   [NumStats]Occurrences
	KDA           []TimedValue
	DeathTimers   []float64
	TotalTimeDead []float64
	Items         []ItemPurchase
}

// BucketSet is the player/ally/enemy triple produced for one match.
type BucketSet [NumBuckets]BucketRecord

// Stat returns the occurrence sequence of one stat.
func (r *BucketRecord) Stat(s Stat) Occurrences {
	return r.Occurrences[s]
}

// Count returns the number of occurrences recorded for a stat.
func (r *BucketRecord) Count(s Stat) int {
	return len(r.Occurrences[s])
}

// CurrentKDA returns (kills+assists)/max(1,deaths) for the record as it stands.
func (r *BucketRecord) CurrentKDA() float64 {
	deaths := math.Max(1, float64(r.Count(StatDeaths)))
	return float64(r.Count(StatKills)+r.Count(StatAssists)) / deaths
}

// TotalGold returns the running item gold after the last purchase.
func (r *BucketRecord) TotalGold() float64 {
	if len(r.Items) == 0 {
		return 0
	}
	return r.Items[len(r.Items)-1].TotalGold
}

// AddKill records a kill and the KDA it produces.
func (r *BucketRecord) AddKill(ts float64) {
	r.Occurrences[StatKills] = append(r.Occurrences[StatKills], ts)
	r.appendKDA(ts)
}

// AddAssist records an assist and the KDA it produces.
func (r *BucketRecord) AddAssist(ts float64) {
	r.Occurrences[StatAssists] = append(r.Occurrences[StatAssists], ts)
	r.appendKDA(ts)
}

// AddDeath records a death, its respawn timer, the running time spent dead and the KDA.
func (r *BucketRecord) AddDeath(ts, timer float64) {
	r.Occurrences[StatDeaths] = append(r.Occurrences[StatDeaths], ts)
	total := timer
	if n := len(r.TotalTimeDead); n > 0 {
		total += r.TotalTimeDead[n-1]
	}
	r.DeathTimers = append(r.DeathTimers, timer)
	r.TotalTimeDead = append(r.TotalTimeDead, total)
	r.appendKDA(ts)
}

// AddOccurrence records a structure or monster stat.
func (r *BucketRecord) AddOccurrence(s Stat, ts float64) {
	r.Occurrences[s] = append(r.Occurrences[s], ts)
}

// AddPurchase appends an item purchase worth gold to the running item-gold history.
func (r *BucketRecord) AddPurchase(ts float64, itemID int, name string, gold float64) {
	r.Items = append(r.Items, ItemPurchase{
		Timestamp: ts,
		ItemID:    itemID,
		Name:      name,
		Gold:      gold,
		TotalGold: r.TotalGold() + gold,
	})
}

func (r *BucketRecord) appendKDA(ts float64) {
	r.KDA = append(r.KDA, TimedValue{Timestamp: ts, Value: r.CurrentKDA()})
}

// ShrunkFrom reports whether any tracked sequence of r is shorter than the same sequence
// of prev. Counts never shrink inside one game, so a shrink means a new game started.
func (r *BucketRecord) ShrunkFrom(prev *BucketRecord) bool {
	for s := Stat(0); s < NumStats; s++ {
		if len(r.Occurrences[s]) < len(prev.Occurrences[s]) {
			return true
		}
	}
	return len(r.KDA) < len(prev.KDA) || len(r.Items) < len(prev.Items)
}

// HasCombat reports whether any kill, death or assist has been recorded.
func (r *BucketRecord) HasCombat() bool {
	return r.Count(StatKills) > 0 || r.Count(StatDeaths) > 0 || r.Count(StatAssists) > 0
}

// ShrunkFrom reports whether any bucket of s shrank compared to prev.
func (s *BucketSet) ShrunkFrom(prev *BucketSet) bool {
	for _, b := range Buckets {
		if s[b].ShrunkFrom(&prev[b]) {
			return true
		}
	}
	return false
}

// HasCombat reports whether any bucket recorded a kill, death or assist.
func (s *BucketSet) HasCombat() bool {
	for _, b := range Buckets {
		if s[b].HasCombat() {
			return true
		}
	}
	return false
}

// bucketRecordJSON is the wire shape consumed by the charting front end.
type bucketRecordJSON struct {
	Occurrences   map[string][]float64 `json:"occurrences"`
	KDA           []TimedValue         `json:"kda"`
	DeathTimers   []float64            `json:"timeSpentDead"`
	TotalTimeDead []float64            `json:"totalTimeSpentDead"`
	Items         []ItemPurchase       `json:"items"`
}

// MarshalJSON encodes the record with stat names as keys and empty arrays instead of null.
func (r BucketRecord) MarshalJSON() ([]byte, error) {
	out := bucketRecordJSON{
		Occurrences:   make(map[string][]float64, NumStats),
		KDA:           nonNil(r.KDA),
		DeathTimers:   nonNil(r.DeathTimers),
		TotalTimeDead: nonNil(r.TotalTimeDead),
		Items:         nonNil(r.Items),
	}
	for s := Stat(0); s < NumStats; s++ {
		out.Occurrences[s.String()] = nonNil([]float64(r.Occurrences[s]))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the shape written by MarshalJSON.
func (r *BucketRecord) UnmarshalJSON(data []byte) error {
	var in bucketRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = BucketRecord{
		KDA:           in.KDA,
		DeathTimers:   in.DeathTimers,
		TotalTimeDead: in.TotalTimeDead,
		Items:         in.Items,
	}
	for name, values := range in.Occurrences {
		s, err := parseStat(name)
		if err != nil {
			return err
		}
		r.Occurrences[s] = values
	}
	return nil
}

// MarshalJSON encodes the set keyed by bucket name.
func (s BucketSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]BucketRecord, NumBuckets)
	for _, b := range Buckets {
		out[b.String()] = s[b]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the shape written by MarshalJSON.
func (s *BucketSet) UnmarshalJSON(data []byte) error {
	var in map[string]BucketRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = BucketSet{}
	for name, rec := range in {
		b, err := ParseBucket(name)
		if err != nil {
			return err
		}
		s[b] = rec
	}
	return nil
}

func parseStat(name string) (Stat, error) {
	for s := Stat(0); s < NumStats; s++ {
		if statNames[s] == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
