package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketRecordKDA(t *testing.T) {
	var r BucketRecord
	r.AddKill(60)
	r.AddKill(120)
	r.AddDeath(180, 10)
	r.AddAssist(240)

	require.Len(t, r.KDA, 4)
	assert.Equal(t, []TimedValue{
		{Timestamp: 60, Value: 1},
		{Timestamp: 120, Value: 2},
		{Timestamp: 180, Value: 2},
		{Timestamp: 240, Value: 3},
	}, r.KDA)
	assert.Equal(t, 3.0, r.CurrentKDA())
}

func TestBucketRecordDeathTotals(t *testing.T) {
	var r BucketRecord
	r.AddDeath(100, 10)
	r.AddDeath(200, 12)
	r.AddDeath(300, 14)

	assert.Equal(t, []float64{10, 12, 14}, r.DeathTimers)
	assert.Equal(t, []float64{10, 22, 36}, r.TotalTimeDead)
	assert.Equal(t, Occurrences{100, 200, 300}, r.Stat(StatDeaths))
	assert.Len(t, r.KDA, 3)
}

func TestBucketRecordPurchaseRunningTotal(t *testing.T) {
	var r BucketRecord
	r.AddPurchase(10, 1055, "Doran's Blade", 450)
	r.AddPurchase(400, 1036, "Long Sword", 350)

	require.Len(t, r.Items, 2)
	assert.Equal(t, 450.0, r.Items[0].TotalGold)
	assert.Equal(t, 800.0, r.Items[1].TotalGold)
	assert.Equal(t, 800.0, r.TotalGold())
}

func TestOccurrencesAt(t *testing.T) {
	o := Occurrences{5, 9}
	v, ok := o.At(1)
	require.True(t, ok)
	require.Equal(t, 9.0, v)
	_, ok = o.At(2)
	require.False(t, ok)
	_, ok = o.At(-1)
	require.False(t, ok)
}

func TestBucketSetShrunkFrom(t *testing.T) {
	var prev BucketSet
	for i := 0; i < 5; i++ {
		prev[BucketPlayer].AddKill(float64(i * 60))
	}
	var next BucketSet
	next[BucketPlayer].AddKill(30)

	assert.True(t, next.ShrunkFrom(&prev))
	assert.False(t, prev.ShrunkFrom(&next))
	assert.False(t, prev.ShrunkFrom(&prev))
}

func TestBucketSetHasCombat(t *testing.T) {
	var s BucketSet
	assert.False(t, s.HasCombat())
	s[BucketEnemy].AddOccurrence(StatTurretKills, 600)
	assert.False(t, s.HasCombat())
	s[BucketEnemy].AddAssist(610)
	assert.True(t, s.HasCombat())
}

func TestBucketSetJSON(t *testing.T) {
	var s BucketSet
	s[BucketPlayer].AddKill(61.5)
	s[BucketAlly].AddOccurrence(StatDragonKills, 300)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "playerStats")
	require.Contains(t, raw, "teamStats")
	require.Contains(t, raw, "enemyStats")
	assert.JSONEq(t, `[]`, string(raw["enemyStats"]["kda"]))

	var back BucketSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Occurrences{61.5}, back[BucketPlayer].Stat(StatKills))
	assert.Equal(t, Occurrences{300}, back[BucketAlly].Stat(StatDragonKills))
}
