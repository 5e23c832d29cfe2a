package live

import (
	"encoding/json"
	"time"

	"lolstats/internal/aggregate"
)

// Snapshot is one poll's read of the live game, folded into the same bucket shape as a
// historical match. A snapshot is never mutated after it is handed to a Session.
type Snapshot struct {
	GameTime      float64
	TakenAt       time.Time
	Started       bool // the feed contained GameStart
	Ended         bool // the feed contained GameEnd
	Buckets       aggregate.BucketSet
	InventoryGold [aggregate.NumBuckets]float64
}

// Empty reports whether the snapshot carries no kill, death or assist in any bucket.
// Loading screens and momentary API gaps produce empty snapshots.
func (s *Snapshot) Empty() bool {
	return s == nil || !s.Buckets.HasCombat()
}

// NewGameSince reports whether s cannot belong to the same game as prev: some tracked
// sequence got shorter, or the game clock went backwards.
func (s *Snapshot) NewGameSince(prev *Snapshot) bool {
	if prev == nil {
		return false
	}
	return s.Buckets.ShrunkFrom(&prev.Buckets) || s.GameTime < prev.GameTime
}

type snapshotJSON struct {
	GameTime      float64             `json:"gameTime"`
	TakenAt       time.Time           `json:"takenAt"`
	Ended         bool                `json:"ended"`
	Stats         aggregate.BucketSet `json:"stats"`
	InventoryGold map[string]float64  `json:"inventoryGold"`
}

// MarshalJSON encodes the snapshot with bucket names as keys.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		GameTime:      s.GameTime,
		TakenAt:       s.TakenAt,
		Ended:         s.Ended,
		Stats:         s.Buckets,
		InventoryGold: make(map[string]float64, aggregate.NumBuckets),
	}
	for _, b := range aggregate.Buckets {
		out.InventoryGold[b.String()] = s.InventoryGold[b]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the shape written by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Snapshot{
		GameTime: in.GameTime,
		TakenAt:  in.TakenAt,
		Ended:    in.Ended,
		Buckets:  in.Stats,
	}
	for name, gold := range in.InventoryGold {
		b, err := aggregate.ParseBucket(name)
		if err != nil {
			return err
		}
		s.InventoryGold[b] = gold
	}
	return nil
}
