package live

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lolstats/internal/aggregate"
)

// GameData is the subset of /liveclientdata/allgamedata the session needs.
type GameData struct {
	ActivePlayer ActivePlayer `json:"activePlayer"`
	AllPlayers   []Player     `json:"allPlayers"`
	Events       struct {
		Events []GameEvent `json:"Events"`
	} `json:"events"`
	GameData struct {
		GameMode string  `json:"gameMode"`
		GameTime float64 `json:"gameTime"`
	} `json:"gameData"`
}

// ActivePlayer identifies the player running the client.
type ActivePlayer struct {
	RiotID         string `json:"riotId"`
	RiotIDGameName string `json:"riotIdGameName"`
	SummonerName   string `json:"summonerName"`
	Level          int    `json:"level"`
}

func (a ActivePlayer) name() string {
	for _, n := range []string{a.RiotID, a.RiotIDGameName, a.SummonerName} {
		if n != "" {
			return n
		}
	}
	return ""
}

// ErrPlayerNotInRoster is returned when the active player matches nobody in allPlayers,
// as when spectating.
var ErrPlayerNotInRoster = errors.New("active player not found in roster")

// Player represents a player from the live client API.
type Player struct {
	ChampionName   string `json:"championName"`
	RiotID         string `json:"riotId"`
	RiotIDGameName string `json:"riotIdGameName"`
	SummonerName   string `json:"summonerName"`
	Team           string `json:"team"`
	Level          int    `json:"level"`
	IsDead         bool   `json:"isDead"`
	Items          []Item `json:"items"`
	Scores         Scores `json:"scores"`
}

// Item represents an item held by a live player.
type Item struct {
	ItemID      int    `json:"itemID"`
	DisplayName string `json:"displayName"`
	Price       int    `json:"price"`
	Count       int    `json:"count"`
	Slot        int    `json:"slot"`
}

// Scores represents player scores.
type Scores struct {
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	Assists    int     `json:"assists"`
	CreepScore int     `json:"creepScore"`
	WardScore  float64 `json:"wardScore"`
}

// GameEvent is one entry of the live event feed.
type GameEvent struct {
	EventID      int      `json:"EventID"`
	EventName    string   `json:"EventName"`
	EventTime    float64  `json:"EventTime"`
	KillerName   string   `json:"KillerName"`
	VictimName   string   `json:"VictimName"`
	Assisters    []string `json:"Assisters"`
	DragonType   string   `json:"DragonType"`
	TurretKilled string   `json:"TurretKilled"`
	InhibKilled  string   `json:"InhibKilled"`
	Stolen       string   `json:"Stolen"`
}

const (
	teamOrder = "ORDER"
	teamChaos = "CHAOS"
)

// roster maps live player names to the participant ids the aggregator works with:
// ORDER players take 1-5 and CHAOS players 6-10, in feed order.
type roster struct {
	ids    map[string]int
	order  []int // participant id per AllPlayers entry, 0 when unplaced
	levels map[int]int
	player int
}

func newRoster(data *GameData) *roster {
	r := &roster{ids: make(map[string]int), levels: make(map[int]int)}
	next := map[string]int{teamOrder: aggregate.MinParticipantID, teamChaos: 6}
	limit := map[string]int{teamOrder: 5, teamChaos: aggregate.MaxParticipantID}

	for _, p := range data.AllPlayers {
		team := strings.ToUpper(p.Team)
		id, ok := next[team]
		if !ok || id > limit[team] {
			r.order = append(r.order, 0)
			continue
		}
		r.order = append(r.order, id)
		next[team] = id + 1
		for _, name := range []string{p.RiotIDGameName, p.RiotID, p.SummonerName} {
			if name != "" {
				r.ids[name] = id
			}
		}
		r.levels[id] = p.Level
	}

	for _, name := range []string{data.ActivePlayer.RiotIDGameName, data.ActivePlayer.RiotID, data.ActivePlayer.SummonerName} {
		if id, ok := r.ids[name]; ok {
			r.player = id
			break
		}
	}
	return r
}

func (r *roster) id(name string) int {
	return r.ids[name]
}

var turretName = regexp.MustCompile(`^Turret_T([12])_([LCR])_0(\d)`)

// sideFromName resolves the side of a non-champion killer from its object name, e.g.
// Minion_T100L1S15N0079 or Turret_T2_C_05_A.
func sideFromName(name string) int {
	switch {
	case strings.Contains(name, "T100"), strings.HasPrefix(name, "Turret_T1"):
		return aggregate.SideOrder
	case strings.Contains(name, "T200"), strings.HasPrefix(name, "Turret_T2"):
		return aggregate.SideChaos
	}
	return 0
}

// opposite returns the other side marker.
func opposite(side int) int {
	switch side {
	case aggregate.SideOrder:
		return aggregate.SideChaos
	case aggregate.SideChaos:
		return aggregate.SideOrder
	}
	return 0
}

// towerTier derives the tier of a destroyed turret from its object name. Lane turrets
// count 03 outer to 01 base; mid lane counts 05 outer to 03 base; mid 01/02 guard the nexus.
func towerTier(name string) aggregate.TowerTier {
	m := turretName.FindStringSubmatch(name)
	if m == nil {
		return aggregate.TowerUnknown
	}
	n := int(m[3][0] - '0')
	if m[2] == "C" {
		switch n {
		case 5:
			return aggregate.TowerOuter
		case 4:
			return aggregate.TowerInner
		case 3:
			return aggregate.TowerBase
		case 1, 2:
			return aggregate.TowerNexus
		}
		return aggregate.TowerUnknown
	}
	switch n {
	case 3:
		return aggregate.TowerOuter
	case 2:
		return aggregate.TowerInner
	case 1:
		return aggregate.TowerBase
	}
	return aggregate.TowerUnknown
}

// buildingOwner returns the side owning a destroyed structure, from names such as
// Turret_T1_L_03_A or Barracks_T2_R1.
func buildingOwner(name string) int {
	switch {
	case strings.Contains(name, "_T1"):
		return aggregate.SideOrder
	case strings.Contains(name, "_T2"):
		return aggregate.SideChaos
	}
	return 0
}

// events converts the live event feed into aggregator events.
func (r *roster) events(feed []GameEvent) []aggregate.Event {
	out := make([]aggregate.Event, 0, len(feed))
	for _, ev := range feed {
		e := aggregate.Event{Timestamp: ev.EventTime, KillerID: r.id(ev.KillerName)}
		if e.KillerID == 0 {
			e.KillerTeam = sideFromName(ev.KillerName)
		}

		switch ev.EventName {
		case "ChampionKill":
			e.Kind = aggregate.EventChampionKill
			e.VictimID = r.id(ev.VictimName)
			e.VictimLevel = r.levels[e.VictimID]
			for _, name := range ev.Assisters {
				if id := r.id(name); id != 0 {
					e.AssistIDs = append(e.AssistIDs, id)
				}
			}
		case "TurretKilled":
			e.Kind = aggregate.EventBuildingKill
			e.Building = aggregate.BuildingTower
			e.Tower = towerTier(ev.TurretKilled)
			if e.KillerID == 0 && e.KillerTeam == 0 {
				e.KillerTeam = opposite(buildingOwner(ev.TurretKilled))
			}
		case "InhibKilled":
			e.Kind = aggregate.EventBuildingKill
			e.Building = aggregate.BuildingInhibitor
			if e.KillerID == 0 && e.KillerTeam == 0 {
				e.KillerTeam = opposite(buildingOwner(ev.InhibKilled))
			}
		case "DragonKill":
			e.Kind = aggregate.EventEliteMonsterKill
			e.Monster = aggregate.MonsterDragon
			if ev.DragonType == "Elder" {
				e.Monster = aggregate.MonsterElder
			}
		case "BaronKill":
			e.Kind = aggregate.EventEliteMonsterKill
			e.Monster = aggregate.MonsterBaron
		case "HeraldKill":
			e.Kind = aggregate.EventEliteMonsterKill
			e.Monster = aggregate.MonsterHerald
		case "HordeKill":
			e.Kind = aggregate.EventEliteMonsterKill
			e.Monster = aggregate.MonsterVoidGrub
		case "AtakhanKill":
			e.Kind = aggregate.EventEliteMonsterKill
			e.Monster = aggregate.MonsterAtakhan
		default:
			continue
		}
		out = append(out, e)
	}
	return out
}

// BuildSnapshot folds one allgamedata read into a Snapshot. items, when non-nil, prices
// held items at their full recipe cost; otherwise the feed's own price is used.
// A roster that does not contain the active player yields ErrPlayerNotInRoster.
func BuildSnapshot(data *GameData, items aggregate.ItemResolver, opts aggregate.Options, now time.Time) (*Snapshot, error) {
	r := newRoster(data)
	if r.player == 0 && len(data.AllPlayers) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotInRoster, data.ActivePlayer.name())
	}
	classifier := aggregate.NewClassifier(r.player)

	snap := &Snapshot{
		GameTime: data.GameData.GameTime,
		TakenAt:  now,
		Buckets:  aggregate.FoldEvents(r.events(data.Events.Events), classifier, nil, opts),
	}
	for _, ev := range data.Events.Events {
		switch ev.EventName {
		case "GameStart":
			snap.Started = true
		case "GameEnd":
			snap.Ended = true
		}
	}

	for i, p := range data.AllPlayers {
		b, ok := classifier.Participant(r.order[i])
		if !ok {
			continue
		}
		gold := inventoryGold(p.Items, items)
		snap.InventoryGold[b] += gold
		if b == aggregate.BucketPlayer && opts.AllyIncludesPlayer {
			snap.InventoryGold[aggregate.BucketAlly] += gold
		}
	}
	return snap, nil
}

func inventoryGold(held []Item, items aggregate.ItemResolver) float64 {
	var total float64
	for _, it := range held {
		count := it.Count
		if count < 1 {
			count = 1
		}
		price := float64(it.Price)
		if items != nil {
			if info, ok := items.Resolve(it.ItemID); ok {
				price = info.Gold.Total
			}
		}
		total += price * float64(count)
	}
	return total
}
