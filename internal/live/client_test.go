package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolstats/internal/aggregate"
)

const allGameDataFixture = `{
  "activePlayer": {"riotIdGameName": "Ahri Main", "riotId": "Ahri Main#NA1", "level": 9},
  "allPlayers": [
    {"riotIdGameName": "Ahri Main", "riotId": "Ahri Main#NA1", "team": "ORDER", "level": 9,
     "items": [{"itemID": 1001, "price": 300, "count": 1}, {"itemID": 2003, "price": 50, "count": 2}]},
    {"riotIdGameName": "Top Ally", "team": "ORDER", "level": 10, "items": [{"itemID": 1036, "price": 350, "count": 1}]},
    {"riotIdGameName": "Jungle Ally", "team": "ORDER", "level": 8},
    {"riotIdGameName": "Bot Ally", "team": "ORDER", "level": 8},
    {"riotIdGameName": "Support Ally", "team": "ORDER", "level": 7},
    {"riotIdGameName": "Enemy Top", "team": "CHAOS", "level": 10, "items": [{"itemID": 3001, "price": 700, "count": 1}]},
    {"riotIdGameName": "Enemy Jungle", "team": "CHAOS", "level": 9},
    {"riotIdGameName": "Enemy Mid", "team": "CHAOS", "level": 12},
    {"riotIdGameName": "Enemy Bot", "team": "CHAOS", "level": 8},
    {"riotIdGameName": "Enemy Support", "team": "CHAOS", "level": 7}
  ],
  "events": {"Events": [
    {"EventID": 0, "EventName": "GameStart", "EventTime": 0.03},
    {"EventID": 1, "EventName": "ChampionKill", "EventTime": 190.5, "KillerName": "Ahri Main", "VictimName": "Enemy Mid", "Assisters": ["Jungle Ally"]},
    {"EventID": 2, "EventName": "ChampionKill", "EventTime": 420.0, "KillerName": "Enemy Top", "VictimName": "Top Ally", "Assisters": []},
    {"EventID": 3, "EventName": "ChampionKill", "EventTime": 500.0, "KillerName": "Turret_T2_L_03_A", "VictimName": "Bot Ally", "Assisters": []},
    {"EventID": 4, "EventName": "DragonKill", "EventTime": 610.0, "KillerName": "Enemy Jungle", "DragonType": "Fire", "Stolen": "False"},
    {"EventID": 5, "EventName": "TurretKilled", "EventTime": 700.0, "KillerName": "Minion_T100L1S15N0079", "TurretKilled": "Turret_T2_R_03_A"},
    {"EventID": 6, "EventName": "TurretKilled", "EventTime": 760.0, "KillerName": "Ahri Main", "TurretKilled": "Turret_T2_C_05_A"},
    {"EventID": 7, "EventName": "HordeKill", "EventTime": 800.0, "KillerName": "Jungle Ally"},
    {"EventID": 8, "EventName": "Multikill", "EventTime": 801.0, "KillerName": "Ahri Main"}
  ]},
  "gameData": {"gameMode": "CLASSIC", "gameTime": 812.4}
}`

func TestClientFetchBuildsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, allGameDataPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(allGameDataFixture))
	}))
	defer srv.Close()

	items := aggregate.StaticItems{3001: {Name: "Combined", Gold: aggregate.ItemGold{Total: 1500}}}
	c := NewClient(srv.URL, items, aggregate.DefaultOptions())
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return now }

	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 812.4, snap.GameTime)
	assert.Equal(t, now, snap.TakenAt)
	assert.True(t, snap.Started)
	assert.False(t, snap.Ended)
	assert.False(t, snap.Empty())

	player := snap.Buckets[aggregate.BucketPlayer]
	ally := snap.Buckets[aggregate.BucketAlly]
	enemy := snap.Buckets[aggregate.BucketEnemy]

	assert.Equal(t, aggregate.Occurrences{190.5}, player.Stat(aggregate.StatKills))
	assert.Equal(t, aggregate.Occurrences{190.5}, ally.Stat(aggregate.StatKills))
	assert.Equal(t, aggregate.Occurrences{190.5}, ally.Stat(aggregate.StatAssists))
	assert.Equal(t, aggregate.Occurrences{420, 500}, ally.Stat(aggregate.StatDeaths))
	assert.Equal(t, aggregate.Occurrences{420}, enemy.Stat(aggregate.StatKills))
	assert.Equal(t, aggregate.Occurrences{190.5}, enemy.Stat(aggregate.StatDeaths))
	assert.Equal(t, []float64{aggregate.DeathTimer(3, 12)}, enemy.DeathTimers)

	assert.Equal(t, aggregate.Occurrences{610}, enemy.Stat(aggregate.StatDragonKills))
	assert.Equal(t, aggregate.Occurrences{700, 760}, ally.Stat(aggregate.StatTurretKills))
	assert.Equal(t, aggregate.Occurrences{700, 760}, ally.Stat(aggregate.StatOuterTowerKills))
	assert.Equal(t, aggregate.Occurrences{760}, player.Stat(aggregate.StatTurretKills))
	assert.Equal(t, aggregate.Occurrences{800}, ally.Stat(aggregate.StatVoidGrubKills))

	assert.Equal(t, 400.0, snap.InventoryGold[aggregate.BucketPlayer])
	assert.Equal(t, 750.0, snap.InventoryGold[aggregate.BucketAlly])
	assert.Equal(t, 1500.0, snap.InventoryGold[aggregate.BucketEnemy])
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorCode":"RESOURCE_NOT_FOUND"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, aggregate.DefaultOptions()).Fetch(context.Background())
	require.ErrorIs(t, err, ErrNoActiveGame)
}

func TestClientFetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, aggregate.DefaultOptions()).Fetch(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	require.False(t, errors.Is(err, ErrUnreachable))
}

func TestClientFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil, aggregate.DefaultOptions()).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestTowerTier(t *testing.T) {
	tests := []struct {
		name     string
		expected aggregate.TowerTier
	}{
		{"Turret_T1_L_03_A", aggregate.TowerOuter},
		{"Turret_T2_R_02_A", aggregate.TowerInner},
		{"Turret_T1_C_06_A", aggregate.TowerUnknown},
		{"Turret_T2_C_05_A", aggregate.TowerOuter},
		{"Turret_T2_C_03_A", aggregate.TowerBase},
		{"Turret_T1_C_01_A", aggregate.TowerNexus},
		{"Barracks_T1_L1", aggregate.TowerUnknown},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, towerTier(test.name), test.name)
	}
}

func TestSideFromName(t *testing.T) {
	require.Equal(t, aggregate.SideOrder, sideFromName("Minion_T100L1S15N0079"))
	require.Equal(t, aggregate.SideChaos, sideFromName("Minion_T200L0S02N0006"))
	require.Equal(t, aggregate.SideChaos, sideFromName("Turret_T2_L_03_A"))
	require.Equal(t, aggregate.SideOrder, sideFromName("Turret_T1_C_05_A"))
	require.Equal(t, 0, sideFromName("SRU_Baron"))
}

func TestClientFetchPlayerNotInRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
  "activePlayer": {"riotId": "Watcher#EUW", "riotIdGameName": "Watcher"},
  "allPlayers": [
    {"riotIdGameName": "Ahri Main", "riotId": "Ahri Main#NA1", "team": "ORDER", "level": 6},
    {"riotIdGameName": "Enemy Top", "team": "CHAOS", "level": 6}
  ],
  "events": {"Events": [{"EventID": 0, "EventName": "ChampionKill", "EventTime": 120.0, "KillerName": "Ahri Main", "VictimName": "Enemy Top"}]},
  "gameData": {"gameTime": 130.0}
}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, aggregate.DefaultOptions()).Fetch(context.Background())
	require.ErrorIs(t, err, ErrPlayerNotInRoster)
	require.ErrorContains(t, err, "Watcher#EUW")
}

func TestBuildSnapshotEmptyRoster(t *testing.T) {
	snap, err := BuildSnapshot(&GameData{}, nil, aggregate.DefaultOptions(), time.Now())
	require.NoError(t, err)
	require.True(t, snap.Empty())
}

func TestBuildSnapshotWithoutItemData(t *testing.T) {
	var data GameData
	require.NoError(t, json.Unmarshal([]byte(allGameDataFixture), &data))

	snap, err := BuildSnapshot(&data, nil, aggregate.DefaultOptions(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 400.0, snap.InventoryGold[aggregate.BucketPlayer])
	assert.Equal(t, 700.0, snap.InventoryGold[aggregate.BucketEnemy])
}
