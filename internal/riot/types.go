package riot

// Account represents the response from /riot/account/v1/accounts/by-riot-id.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Match represents the response from /lol/match/v5/matches/{matchId}.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation     int64              `json:"gameCreation"`
	GameDuration     int                `json:"gameDuration"`
	GameEndTimestamp int64              `json:"gameEndTimestamp"`
	GameVersion      string             `json:"gameVersion"`
	QueueID          int                `json:"queueId"`
	Participants     []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	ParticipantID             int    `json:"participantId"`
	PUUID                     string `json:"puuid"`
	RiotIDGameName            string `json:"riotIdGameName"`
	RiotIDTagline             string `json:"riotIdTagline"`
	ChampionName              string `json:"championName"`
	TeamID                    int    `json:"teamId"`
	Win                       bool   `json:"win"`
	GameEndedInSurrender      bool   `json:"gameEndedInSurrender"`
	GameEndedInEarlySurrender bool   `json:"gameEndedInEarlySurrender"`
}

// Participant returns the participant with the given PUUID.
func (m *Match) Participant(puuid string) (MatchParticipant, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return MatchParticipant{}, false
}

// Timeline represents the response from /lol/match/v5/matches/{matchId}/timeline.
type Timeline struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     TimelineInfo  `json:"info"`
}

type TimelineInfo struct {
	FrameInterval int                   `json:"frameInterval"`
	Frames        []TimelineFrame       `json:"frames"`
	Participants  []TimelineParticipant `json:"participants"`
}

type TimelineParticipant struct {
	ParticipantID int    `json:"participantId"`
	PUUID         string `json:"puuid"`
}

type TimelineFrame struct {
	Timestamp int64           `json:"timestamp"`
	Events    []TimelineEvent `json:"events"`
}

// TimelineEvent is one timeline event. Timestamps are milliseconds of game time.
type TimelineEvent struct {
	Type                    string `json:"type"`
	Timestamp               int64  `json:"timestamp"`
	ParticipantID           int    `json:"participantId,omitempty"`
	ItemID                  int    `json:"itemId,omitempty"`
	KillerID                int    `json:"killerId,omitempty"`
	VictimID                int    `json:"victimId,omitempty"`
	AssistingParticipantIDs []int  `json:"assistingParticipantIds,omitempty"`
	KillerTeamID            int    `json:"killerTeamId,omitempty"`
	TeamID                  int    `json:"teamId,omitempty"`
	BuildingType            string `json:"buildingType,omitempty"`
	TowerType               string `json:"towerType,omitempty"`
	LaneType                string `json:"laneType,omitempty"`
	MonsterType             string `json:"monsterType,omitempty"`
	MonsterSubType          string `json:"monsterSubType,omitempty"`
	Level                   int    `json:"level,omitempty"`
}
