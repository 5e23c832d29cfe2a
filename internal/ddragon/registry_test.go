package ddragon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolstats/internal/aggregate"
	"lolstats/internal/cache"
)

const itemFixture = `{"type":"item","version":"15.1.1","data":{
  "1036": {"name": "Long Sword", "gold": {"base": 350, "total": 350, "sell": 245}},
  "3035": {"name": "Last Whisper", "from": ["1036", "1036"], "gold": {"base": 750, "total": 1450, "sell": 1015}},
  "bad":  {"name": "ignored", "gold": {"total": 1}}
}}`

func newDataDragon(t *testing.T, itemCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`["15.1.1","14.24.1"]`))
	})
	mux.HandleFunc("/cdn/15.1.1/data/en_US/item.json", func(w http.ResponseWriter, _ *http.Request) {
		itemCalls.Add(1)
		_, _ = w.Write([]byte(itemFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRegistryLoadLatest(t *testing.T) {
	var calls atomic.Int32
	srv := newDataDragon(t, &calls)

	r := NewRegistry(srv.URL, nil)
	require.NoError(t, r.Load(context.Background(), ""))
	assert.Equal(t, "15.1.1", r.Version())
	assert.Equal(t, 2, r.Len())

	info, ok := r.Resolve(3035)
	require.True(t, ok)
	assert.Equal(t, "Last Whisper", info.Name)
	assert.Equal(t, aggregate.ItemGold{Base: 750, Total: 1450, Sell: 1015}, info.Gold)
	assert.Equal(t, []int{1036, 1036}, info.From)

	_, ok = r.Resolve(9999)
	assert.False(t, ok)
}

func TestRegistryUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := newDataDragon(t, &calls)
	store := cache.NewMemory()

	require.NoError(t, NewRegistry(srv.URL, store).Load(context.Background(), "15.1.1"))
	second := NewRegistry(srv.URL, store)
	require.NoError(t, second.Load(context.Background(), "15.1.1"))

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2, second.Len())
}

func TestRegistryUnknownVersion(t *testing.T) {
	var calls atomic.Int32
	srv := newDataDragon(t, &calls)
	require.Error(t, NewRegistry(srv.URL, nil).Load(context.Background(), "1.0.0"))
}

func TestRegistryFeedsComponentCredits(t *testing.T) {
	var calls atomic.Int32
	srv := newDataDragon(t, &calls)
	r := NewRegistry(srv.URL, nil)
	require.NoError(t, r.Load(context.Background(), ""))

	events := []aggregate.Event{
		{Kind: aggregate.EventItemPurchased, Timestamp: 300, ParticipantID: 1, ItemID: 1036},
		{Kind: aggregate.EventItemPurchased, Timestamp: 400, ParticipantID: 1, ItemID: 1036},
		{Kind: aggregate.EventItemPurchased, Timestamp: 900, ParticipantID: 1, ItemID: 3035},
	}
	set := aggregate.FoldEvents(events, aggregate.NewClassifier(1), r, aggregate.Options{})
	assert.Equal(t, 1450.0, set[aggregate.BucketPlayer].TotalGold())
}

func TestRegistryLoadOrWarnUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewRegistry(srv.URL, nil)
	require.False(t, r.LoadOrWarn(context.Background()))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Version())

	// purchases still fold, at zero gold
	events := []aggregate.Event{
		{Kind: aggregate.EventChampionKill, Timestamp: 100, KillerID: 1, VictimID: 7},
		{Kind: aggregate.EventItemPurchased, Timestamp: 300, ParticipantID: 1, ItemID: 1036},
	}
	rec, err := aggregate.NewAnalyzer(r, aggregate.DefaultOptions()).AnalyzeMatch(aggregate.MatchInput{
		MatchID: "NA1_1", PlayerID: 1, Outcome: aggregate.OutcomeWin, Events: events,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Buckets[aggregate.BucketPlayer].Count(aggregate.StatKills))
	require.Len(t, rec.Buckets[aggregate.BucketPlayer].Items, 1)
	assert.Equal(t, 0.0, rec.Buckets[aggregate.BucketPlayer].TotalGold())
}

func TestRegistryLoadOrWarn(t *testing.T) {
	var calls atomic.Int32
	srv := newDataDragon(t, &calls)

	r := NewRegistry(srv.URL, nil)
	require.True(t, r.LoadOrWarn(context.Background()))
	assert.Equal(t, "15.1.1", r.Version())
}
