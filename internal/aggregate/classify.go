package aggregate

// Classifier attributes participants and sides to buckets relative to one queried player.
type Classifier struct {
	player int
	allies map[int]bool
}

// NewClassifier builds a classifier for the given player. The ally set is the player's
// partition of the participant ids (1-5 or 6-10), player included.
func NewClassifier(player int) Classifier {
	allies := make(map[int]bool, teamSize)
	side := SideOf(player)
	for id := MinParticipantID; id <= MaxParticipantID; id++ {
		if side != 0 && SideOf(id) == side {
			allies[id] = true
		}
	}
	return Classifier{player: player, allies: allies}
}

// NewClassifierWithAllies builds a classifier from an explicit ally id list.
func NewClassifierWithAllies(player int, allyIDs []int) Classifier {
	allies := make(map[int]bool, len(allyIDs))
	for _, id := range allyIDs {
		allies[id] = true
	}
	return Classifier{player: player, allies: allies}
}

// Player returns the queried participant id.
func (c Classifier) Player() int {
	return c.player
}

// Participant classifies a participant id. Ids outside 1-10 (minions, turrets, the
// zero id the timeline uses for executions) are reported with ok=false.
func (c Classifier) Participant(id int) (Bucket, bool) {
	if !validParticipant(id) {
		return 0, false
	}
	if id == c.player {
		return BucketPlayer, true
	}
	if c.allies[id] {
		return BucketAlly, true
	}
	return BucketEnemy, true
}

// Side classifies a side marker (SideOrder/SideChaos) as ally or enemy.
func (c Classifier) Side(side int) (Bucket, bool) {
	if side != SideOrder && side != SideChaos {
		return 0, false
	}
	if side == SideOf(c.player) {
		return BucketAlly, true
	}
	return BucketEnemy, true
}

// Killer classifies the killer of a kill-type event, falling back to the killer's side
// marker when the killer is not a champion.
func (c Classifier) Killer(e Event) (Bucket, bool) {
	if b, ok := c.Participant(e.KillerID); ok {
		return b, true
	}
	return c.Side(e.KillerTeam)
}
