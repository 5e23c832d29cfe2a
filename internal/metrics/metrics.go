package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lolstats/internal/logging"
)

// Collector holds every metric exported by the workers. A nil *Collector is valid and
// records nothing.
type Collector struct {
	LivePolls       *prometheus.CounterVec
	LivePhase       *prometheus.GaugeVec
	LiveInterval    prometheus.Gauge
	AnalysisRuns    *prometheus.CounterVec
	MatchesAnalyzed prometheus.Counter
	MatchesSkipped  prometheus.Counter
	RiotRequests    *prometheus.CounterVec
	JobDuration     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		LivePolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lolstats_live_polls_total", Help: "Completed live client polls by result"},
			[]string{"result"}),

		LivePhase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "lolstats_live_phase", Help: "1 for the current live session phase"},
			[]string{"phase"}),

		LiveInterval: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "lolstats_live_poll_interval_seconds", Help: "Current live polling interval"}),

		AnalysisRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lolstats_analysis_runs_total", Help: "Historical analysis jobs by status"},
			[]string{"status"}),

		MatchesAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "lolstats_matches_analyzed_total", Help: "Matches folded into bucket records"}),

		MatchesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "lolstats_matches_skipped_total", Help: "Matches skipped as unidentifiable"}),

		RiotRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lolstats_riot_requests_total", Help: "Riot API requests by endpoint and outcome"},
			[]string{"endpoint", "outcome"}),

		JobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "lolstats_job_duration_seconds", Help: "Historical analysis job duration",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10)}),
	}
	for _, m := range []prometheus.Collector{
		c.LivePolls,
		c.LivePhase,
		c.LiveInterval,
		c.AnalysisRuns,
		c.MatchesAnalyzed,
		c.MatchesSkipped,
		c.RiotRequests,
		c.JobDuration,
	} {
		_ = reg.Register(m)
	}
	return c
}

// ObservePoll counts one completed live poll.
func (c *Collector) ObservePoll(result string) {
	if c == nil {
		return
	}
	c.LivePolls.WithLabelValues(result).Inc()
}

// SetPhase marks phase as the only active live phase.
func (c *Collector) SetPhase(phase string, all []string) {
	if c == nil {
		return
	}
	for _, p := range all {
		v := 0.0
		if p == phase {
			v = 1
		}
		c.LivePhase.WithLabelValues(p).Set(v)
	}
}

// SetInterval records the live polling interval.
func (c *Collector) SetInterval(d time.Duration) {
	if c == nil {
		return
	}
	c.LiveInterval.Set(d.Seconds())
}

// ObserveRun records the outcome of one analysis job.
func (c *Collector) ObserveRun(status string, analyzed, skipped int, took time.Duration) {
	if c == nil {
		return
	}
	c.AnalysisRuns.WithLabelValues(status).Inc()
	c.MatchesAnalyzed.Add(float64(analyzed))
	c.MatchesSkipped.Add(float64(skipped))
	c.JobDuration.Observe(took.Seconds())
}

// ObserveRiot counts one Riot API request.
func (c *Collector) ObserveRiot(endpoint, outcome string) {
	if c == nil {
		return
	}
	c.RiotRequests.WithLabelValues(endpoint, outcome).Inc()
}

// Serve exposes gatherer on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Logger().Infof("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
