package aggregate

import (
	"errors"

	"lolstats/internal/logging"
)

// ErrUnidentifiableMatch is returned when no event of a match names a participant.
var ErrUnidentifiableMatch = errors.New("cannot determine participant identity")

// Options tunes how events are routed to buckets.
type Options struct {
	// AllyIncludesPlayer also folds the player's own events into the ally bucket.
	AllyIncludesPlayer bool
}

// DefaultOptions returns the routing used by the dashboard: the ally bucket includes the player.
func DefaultOptions() Options {
	return Options{AllyIncludesPlayer: true}
}

// Analyzer runs the Match Aggregator over historical matches.
type Analyzer struct {
	items ItemResolver
	opts  Options
}

// NewAnalyzer creates an analyzer resolving item gold through items.
func NewAnalyzer(items ItemResolver, opts Options) *Analyzer {
	return &Analyzer{items: items, opts: opts}
}

// AnalyzeMatch folds every event of one match, in input order, into a fresh bucket triple
// and tags it with the match outcome. Matches with no identifiable participant, or that
// the player did not take part in, are rejected with ErrUnidentifiableMatch.
func (a *Analyzer) AnalyzeMatch(m MatchInput) (*MatchRecord, error) {
	player := m.PlayerID
	if m.PlayerMissing || !identifiable(m.Events) {
		return nil, ErrUnidentifiableMatch
	}
	if !validParticipant(player) {
		player = firstParticipant(m.Events)
		if player == 0 {
			return nil, ErrUnidentifiableMatch
		}
	}

	return &MatchRecord{
		MatchID:  m.MatchID,
		PlayerID: player,
		Outcome:  m.Outcome,
		Buckets:  FoldEvents(m.Events, NewClassifier(player), a.items, a.opts),
	}, nil
}

// FoldEvents runs the Event Classifier and Stat Accumulator over events in input order.
// Callers must pass events sorted by timestamp for KDA and running totals to be meaningful.
func FoldEvents(events []Event, c Classifier, items ItemResolver, opts Options) BucketSet {
	var set BucketSet
	st := newMatchState(c, items, opts)
	for _, e := range events {
		st.fold(&set, e)
	}
	return set
}

// matchState is the scratch state owned by one match fold.
type matchState struct {
	classifier Classifier
	opts       Options
	ledger     *itemLedger
	levels     map[int]int
	log        logging.Interface
}

func newMatchState(c Classifier, items ItemResolver, opts Options) *matchState {
	return &matchState{
		classifier: c,
		opts:       opts,
		ledger:     newItemLedger(items),
		levels:     make(map[int]int, MaxParticipantID),
		log:        logging.Logger(),
	}
}

// targets returns the buckets an effect attributed to b must be written to.
func (st *matchState) targets(b Bucket) []Bucket {
	if b == BucketPlayer && st.opts.AllyIncludesPlayer {
		return []Bucket{BucketPlayer, BucketAlly}
	}
	return []Bucket{b}
}

func (st *matchState) fold(set *BucketSet, e Event) {
	switch e.Kind {
	case EventChampionKill:
		st.foldChampionKill(set, e)
	case EventBuildingKill:
		st.foldBuildingKill(set, e)
	case EventEliteMonsterKill:
		st.foldMonsterKill(set, e)
	case EventItemPurchased:
		st.foldPurchase(set, e)
	case EventItemDestroyed:
		if validParticipant(e.ParticipantID) {
			st.ledger.destroy(e.ParticipantID, e.ItemID)
		}
	case EventItemSold:
		if validParticipant(e.ParticipantID) {
			st.ledger.sell(e.ParticipantID, e.ItemID)
		}
	case EventLevelUp:
		if validParticipant(e.ParticipantID) && e.Level > 0 {
			st.levels[e.ParticipantID] = e.Level
		}
	default:
		st.log.Debugf("ignoring event of kind %s at %.1fs", e.Kind, e.Timestamp)
	}
}

func (st *matchState) foldChampionKill(set *BucketSet, e Event) {
	// Kills by minions and turrets credit nobody; the death and assists still count.
	if b, ok := st.classifier.Participant(e.KillerID); ok {
		for _, t := range st.targets(b) {
			set[t].AddKill(e.Timestamp)
		}
	}

	if b, ok := st.classifier.Participant(e.VictimID); ok {
		timer := DeathTimer(gameMinute(e.Timestamp), st.victimLevel(e))
		for _, t := range st.targets(b) {
			set[t].AddDeath(e.Timestamp, timer)
		}
	} else {
		st.log.Warnf("champion kill at %.1fs has unknown victim %d", e.Timestamp, e.VictimID)
	}

	for _, id := range e.AssistIDs {
		b, ok := st.classifier.Participant(id)
		if !ok {
			continue
		}
		for _, t := range st.targets(b) {
			set[t].AddAssist(e.Timestamp)
		}
	}
}

func (st *matchState) victimLevel(e Event) int {
	if e.VictimLevel > 0 {
		return e.VictimLevel
	}
	if lvl, ok := st.levels[e.VictimID]; ok {
		return lvl
	}
	return 1
}

func (st *matchState) foldBuildingKill(set *BucketSet, e Event) {
	b, ok := st.classifier.Killer(e)
	if !ok {
		st.log.Warnf("building kill at %.1fs has no attributable killer", e.Timestamp)
		return
	}
	for _, t := range st.targets(b) {
		switch e.Building {
		case BuildingTower:
			set[t].AddOccurrence(StatTurretKills, e.Timestamp)
			if s, ok := towerStat(e.Tower); ok {
				set[t].AddOccurrence(s, e.Timestamp)
			}
		case BuildingInhibitor:
			set[t].AddOccurrence(StatInhibitorKills, e.Timestamp)
		}
	}
}

func (st *matchState) foldMonsterKill(set *BucketSet, e Event) {
	b, ok := st.classifier.Killer(e)
	if !ok {
		st.log.Warnf("monster kill at %.1fs has no attributable killer", e.Timestamp)
		return
	}
	for _, t := range st.targets(b) {
		set[t].AddOccurrence(StatEliteMonsterKills, e.Timestamp)
		if s, ok := monsterStat(e.Monster); ok {
			set[t].AddOccurrence(s, e.Timestamp)
		}
	}
}

func (st *matchState) foldPurchase(set *BucketSet, e Event) {
	b, ok := st.classifier.Participant(e.ParticipantID)
	if !ok {
		st.log.Warnf("item purchase at %.1fs has unknown participant %d", e.Timestamp, e.ParticipantID)
		return
	}
	info, gold, known := st.ledger.purchase(e.ParticipantID, e.ItemID)
	if !known {
		st.log.Warnf("item %d not found in item data, counting as zero gold", e.ItemID)
	}
	for _, t := range st.targets(b) {
		set[t].AddPurchase(e.Timestamp, e.ItemID, info.Name, gold)
	}
}

// identifiable reports whether any event names a participant.
func identifiable(events []Event) bool {
	for _, e := range events {
		if len(e.participantIDs()) > 0 {
			return true
		}
	}
	return false
}

// firstParticipant returns the ParticipantID of the first event carrying one.
func firstParticipant(events []Event) int {
	for _, e := range events {
		if validParticipant(e.ParticipantID) {
			return e.ParticipantID
		}
	}
	return 0
}
