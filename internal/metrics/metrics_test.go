package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObservePoll("ok")
	c.ObservePoll("ok")
	c.ObservePoll("unreachable")
	require.Equal(t, 2.0, testutil.ToFloat64(c.LivePolls.WithLabelValues("ok")))

	c.SetPhase("gameActive", []string{"noGame", "gameActive", "gameEnded"})
	require.Equal(t, 1.0, testutil.ToFloat64(c.LivePhase.WithLabelValues("gameActive")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.LivePhase.WithLabelValues("noGame")))

	c.SetInterval(2 * time.Minute)
	require.Equal(t, 120.0, testutil.ToFloat64(c.LiveInterval))

	c.ObserveRun("done", 18, 2, time.Second)
	require.Equal(t, 18.0, testutil.ToFloat64(c.MatchesAnalyzed))
	require.Equal(t, 2.0, testutil.ToFloat64(c.MatchesSkipped))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.ObservePoll("ok")
		c.SetInterval(time.Second)
		c.ObserveRun("failed", 0, 0, 0)
		c.ObserveRiot("match", "ok")
	})
}
