package riot

import (
	"lolstats/internal/aggregate"
)

// Events converts a match-v5 timeline into aggregator events, in frame order.
// Event kinds the aggregator does not track are dropped.
func Events(tl *Timeline) []aggregate.Event {
	if tl == nil {
		return nil
	}
	var out []aggregate.Event
	for _, frame := range tl.Info.Frames {
		for _, ev := range frame.Events {
			if e, ok := convertEvent(ev); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

func convertEvent(ev TimelineEvent) (aggregate.Event, bool) {
	e := aggregate.Event{Timestamp: float64(ev.Timestamp) / 1000}

	switch ev.Type {
	case "CHAMPION_KILL":
		e.Kind = aggregate.EventChampionKill
		e.KillerID = ev.KillerID
		e.VictimID = ev.VictimID
		e.AssistIDs = ev.AssistingParticipantIDs
		if e.KillerID == 0 {
			e.KillerTeam = opposite(aggregate.SideOf(ev.VictimID))
		}
	case "BUILDING_KILL":
		e.Kind = aggregate.EventBuildingKill
		e.KillerID = ev.KillerID
		// teamId names the side that lost the building
		e.KillerTeam = opposite(ev.TeamID)
		switch ev.BuildingType {
		case "TOWER_BUILDING":
			e.Building = aggregate.BuildingTower
			e.Tower = towerTier(ev.TowerType)
		case "INHIBITOR_BUILDING":
			e.Building = aggregate.BuildingInhibitor
		}
	case "ELITE_MONSTER_KILL":
		e.Kind = aggregate.EventEliteMonsterKill
		e.KillerID = ev.KillerID
		e.KillerTeam = ev.KillerTeamID
		e.Monster = monsterType(ev.MonsterType, ev.MonsterSubType)
	case "ITEM_PURCHASED":
		e.Kind = aggregate.EventItemPurchased
		e.ParticipantID = ev.ParticipantID
		e.ItemID = ev.ItemID
	case "ITEM_DESTROYED":
		e.Kind = aggregate.EventItemDestroyed
		e.ParticipantID = ev.ParticipantID
		e.ItemID = ev.ItemID
	case "ITEM_SOLD":
		e.Kind = aggregate.EventItemSold
		e.ParticipantID = ev.ParticipantID
		e.ItemID = ev.ItemID
	case "LEVEL_UP":
		e.Kind = aggregate.EventLevelUp
		e.ParticipantID = ev.ParticipantID
		e.Level = ev.Level
	default:
		return aggregate.Event{}, false
	}
	return e, true
}

func towerTier(t string) aggregate.TowerTier {
	switch t {
	case "OUTER_TURRET":
		return aggregate.TowerOuter
	case "INNER_TURRET":
		return aggregate.TowerInner
	case "BASE_TURRET":
		return aggregate.TowerBase
	case "NEXUS_TURRET":
		return aggregate.TowerNexus
	}
	return aggregate.TowerUnknown
}

func monsterType(t, sub string) aggregate.MonsterType {
	switch t {
	case "DRAGON":
		if sub == "ELDER_DRAGON" {
			return aggregate.MonsterElder
		}
		return aggregate.MonsterDragon
	case "BARON_NASHOR":
		return aggregate.MonsterBaron
	case "RIFTHERALD":
		return aggregate.MonsterHerald
	case "HORDE":
		return aggregate.MonsterVoidGrub
	case "ATAKHAN":
		return aggregate.MonsterAtakhan
	}
	return aggregate.MonsterUnknown
}

func opposite(side int) int {
	switch side {
	case aggregate.SideOrder:
		return aggregate.SideChaos
	case aggregate.SideChaos:
		return aggregate.SideOrder
	}
	return 0
}

// MatchInput pairs a match with its timeline for the player identified by puuid.
// A match that does not list the player is flagged PlayerMissing, which the
// aggregator skips.
func MatchInput(match *Match, tl *Timeline, puuid string) aggregate.MatchInput {
	in := aggregate.MatchInput{
		MatchID: match.Metadata.MatchID,
		Outcome: aggregate.OutcomeUnknown,
		Events:  Events(tl),
	}
	p, ok := match.Participant(puuid)
	if !ok {
		in.PlayerMissing = true
		return in
	}
	in.PlayerID = p.ParticipantID
	in.Outcome = aggregate.OutcomeFor(p.Win, p.GameEndedInSurrender || p.GameEndedInEarlySurrender)
	return in
}
