package aggregate

import "fmt"

// Side markers used by the game for the two teams.
const (
	SideOrder = 100 // participants 1-5
	SideChaos = 200 // participants 6-10
)

// Participant id bounds. Ids 1-5 belong to SideOrder and 6-10 to SideChaos.
const (
	MinParticipantID = 1
	MaxParticipantID = 10
	teamSize         = 5
)

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventChampionKill EventKind = iota + 1
	EventBuildingKill
	EventEliteMonsterKill
	EventItemPurchased
	EventItemDestroyed
	EventItemSold
	EventLevelUp
)

func (k EventKind) String() string {
	switch k {
	case EventChampionKill:
		return "CHAMPION_KILL"
	case EventBuildingKill:
		return "BUILDING_KILL"
	case EventEliteMonsterKill:
		return "ELITE_MONSTER_KILL"
	case EventItemPurchased:
		return "ITEM_PURCHASED"
	case EventItemDestroyed:
		return "ITEM_DESTROYED"
	case EventItemSold:
		return "ITEM_SOLD"
	case EventLevelUp:
		return "LEVEL_UP"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// BuildingType distinguishes towers from inhibitors in building kills.
type BuildingType int

const (
	BuildingUnknown BuildingType = iota
	BuildingTower
	BuildingInhibitor
)

// TowerTier is the lane position of a destroyed tower.
type TowerTier int

const (
	TowerUnknown TowerTier = iota
	TowerOuter
	TowerInner
	TowerBase
	TowerNexus
)

// MonsterType is the elite monster slain in a monster kill.
type MonsterType int

const (
	MonsterUnknown MonsterType = iota
	MonsterDragon
	MonsterElder
	MonsterBaron
	MonsterHerald
	MonsterVoidGrub
	MonsterAtakhan
)

// Event is one immutable timeline fact. Which fields are meaningful depends on Kind:
//   - ChampionKill: KillerID, VictimID, AssistIDs, VictimLevel, KillerTeam
//   - BuildingKill: KillerID, KillerTeam, Building, Tower
//   - EliteMonsterKill: KillerID, KillerTeam, Monster
//   - ItemPurchased / ItemDestroyed / ItemSold: ParticipantID, ItemID
//   - LevelUp: ParticipantID, Level
//
// KillerTeam carries the side marker (SideOrder/SideChaos) of a killer that is not a
// champion (minions, turrets). VictimLevel is optional; when zero the level tracked from
// LevelUp events is used.
type Event struct {
	Kind          EventKind
	Timestamp     float64 // game clock, seconds
	KillerID      int
	VictimID      int
	AssistIDs     []int
	ParticipantID int
	ItemID        int
	Level         int
	VictimLevel   int
	KillerTeam    int
	Building      BuildingType
	Tower         TowerTier
	Monster       MonsterType
}

// participantIDs lists every participant id the event names.
func (e Event) participantIDs() []int {
	ids := make([]int, 0, 3+len(e.AssistIDs))
	for _, id := range []int{e.ParticipantID, e.KillerID, e.VictimID} {
		if validParticipant(id) {
			ids = append(ids, id)
		}
	}
	for _, id := range e.AssistIDs {
		if validParticipant(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func validParticipant(id int) bool {
	return id >= MinParticipantID && id <= MaxParticipantID
}

// SideOf returns the side marker of a participant id, or 0 for ids outside 1-10.
func SideOf(id int) int {
	switch {
	case id >= MinParticipantID && id <= teamSize:
		return SideOrder
	case id > teamSize && id <= MaxParticipantID:
		return SideChaos
	default:
		return 0
	}
}

// Bucket is one of the three parallel views every stat is tracked under.
type Bucket int

const (
	BucketPlayer Bucket = iota
	BucketAlly
	BucketEnemy
	NumBuckets
)

// Buckets lists every bucket in display order.
var Buckets = [NumBuckets]Bucket{BucketPlayer, BucketAlly, BucketEnemy}

func (b Bucket) String() string {
	switch b {
	case BucketPlayer:
		return "playerStats"
	case BucketAlly:
		return "teamStats"
	case BucketEnemy:
		return "enemyStats"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// ParseBucket is the inverse of Bucket.String.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown bucket %q", s)
}

// Outcome is the result category a historical match is averaged under.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLoss
	OutcomeSurrenderWin
	OutcomeSurrenderLoss
	NumOutcomes

	// OutcomeUnknown tags live games; such records never enter a CategoryTable.
	OutcomeUnknown Outcome = -1
)

// Outcomes lists every averaged outcome category.
var Outcomes = [NumOutcomes]Outcome{OutcomeWin, OutcomeLoss, OutcomeSurrenderWin, OutcomeSurrenderLoss}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	case OutcomeSurrenderWin:
		return "surrenderWin"
	case OutcomeSurrenderLoss:
		return "surrenderLoss"
	case OutcomeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range Outcomes {
		if o.String() == s {
			return o, nil
		}
	}
	if s == OutcomeUnknown.String() {
		return OutcomeUnknown, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// OutcomeFor maps the win and surrender flags of a match to its category.
func OutcomeFor(won, surrendered bool) Outcome {
	switch {
	case won && surrendered:
		return OutcomeSurrenderWin
	case won:
		return OutcomeWin
	case surrendered:
		return OutcomeSurrenderLoss
	default:
		return OutcomeLoss
	}
}

func (o Outcome) valid() bool {
	return o >= 0 && o < NumOutcomes
}

// Stat is a tracked occurrence kind. Every Stat owns one Occurrences sequence per bucket.
type Stat int

const (
	StatKills Stat = iota
	StatDeaths
	StatAssists
	StatTurretKills
	StatOuterTowerKills
	StatInnerTowerKills
	StatBaseTowerKills
	StatNexusTowerKills
	StatInhibitorKills
	StatEliteMonsterKills
	StatDragonKills
	StatElderKills
	StatBaronKills
	StatHeraldKills
	StatVoidGrubKills
	StatAtakhanKills
	NumStats
)

var statNames = [NumStats]string{
	StatKills:             "kills",
	StatDeaths:            "deaths",
	StatAssists:           "assists",
	StatTurretKills:       "turretKills",
	StatOuterTowerKills:   "outerTowerKills",
	StatInnerTowerKills:   "innerTowerKills",
	StatBaseTowerKills:    "baseTowerKills",
	StatNexusTowerKills:   "nexusTowerKills",
	StatInhibitorKills:    "inhibitorKills",
	StatEliteMonsterKills: "eliteMonsterKills",
	StatDragonKills:       "dragonKills",
	StatElderKills:        "elderKills",
	StatBaronKills:        "baronKills",
	StatHeraldKills:       "heraldKills",
	StatVoidGrubKills:     "voidGrubKills",
	StatAtakhanKills:      "atakhanKills",
}

func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statNames[s]
}

// towerStat maps a tower tier to its granular stat.
func towerStat(t TowerTier) (Stat, bool) {
	switch t {
	case TowerOuter:
		return StatOuterTowerKills, true
	case TowerInner:
		return StatInnerTowerKills, true
	case TowerBase:
		return StatBaseTowerKills, true
	case TowerNexus:
		return StatNexusTowerKills, true
	default:
		return 0, false
	}
}

// monsterStat maps a monster type to its granular stat.
func monsterStat(m MonsterType) (Stat, bool) {
	switch m {
	case MonsterDragon:
		return StatDragonKills, true
	case MonsterElder:
		return StatElderKills, true
	case MonsterBaron:
		return StatBaronKills, true
	case MonsterHerald:
		return StatHeraldKills, true
	case MonsterVoidGrub:
		return StatVoidGrubKills, true
	case MonsterAtakhan:
		return StatAtakhanKills, true
	default:
		return 0, false
	}
}

// TimedValue is a derived value observed at a game-clock timestamp.
type TimedValue struct {
	Timestamp float64 `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ItemPurchase is one entry of a bucket's running item-gold history.
type ItemPurchase struct {
	Timestamp float64 `json:"timestamp"`
	ItemID    int     `json:"itemId"`
	Name      string  `json:"itemName"`
	Gold      float64 `json:"gold"`      // gold added by this purchase after component credits
	TotalGold float64 `json:"totalGold"` // running total for the bucket
}

// MatchRecord is the finalized per-match output of the Match Aggregator.
type MatchRecord struct {
	MatchID  string
	PlayerID int
	Outcome  Outcome
	Buckets  BucketSet
}

// MatchInput is one historical match as handed to the Match Aggregator.
// PlayerID may be zero when the caller had no match metadata to resolve it from.
// PlayerMissing marks a match whose metadata was searched and does not list the player.
type MatchInput struct {
	MatchID       string
	PlayerID      int
	PlayerMissing bool
	Outcome       Outcome
	Events        []Event
}
