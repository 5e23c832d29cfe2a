package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lolstats/internal/aggregate"
	"lolstats/internal/logging"
	"lolstats/internal/metrics"
	"lolstats/internal/queue"
	"lolstats/internal/riot"
)

// Run statuses reported to metrics.
const (
	StatusOK      = "ok"
	StatusNoGames = "no_games"
	StatusFailed  = "failed"
)

// JobPayload represents the incoming job from the Redis queue. Either PUUID or
// GameName and TagLine identify the player; zero Count and QueueID use the defaults.
type JobPayload struct {
	PUUID    string `json:"puuid,omitempty"`
	GameName string `json:"game_name,omitempty"`
	TagLine  string `json:"tag_line,omitempty"`
	Count    int    `json:"count,omitempty"`
	QueueID  int    `json:"queue_id,omitempty"`
}

// Validate checks the player is identified and the count is in range.
func (j JobPayload) Validate() error {
	if j.PUUID == "" && (j.GameName == "" || j.TagLine == "") {
		return errors.New("either puuid or game_name and tag_line are required")
	}
	if j.Count < 0 || j.Count > 100 {
		return fmt.Errorf("count %d out of range", j.Count)
	}
	return nil
}

// HistorySource fetches the match history of a player.
type HistorySource interface {
	Fetch(ctx context.Context, req riot.HistoryRequest) (string, []aggregate.MatchInput, error)
}

// RunWriter persists an analysis run.
type RunWriter interface {
	WriteRun(ctx context.Context, puuid string, set *aggregate.AnalysisSet) (uuid.UUID, error)
}

// ViewRefresher rebuilds derived views after a run is written.
type ViewRefresher interface {
	RefreshAll(ctx context.Context) error
}

// Defaults applied to jobs that leave Count or QueueID unset.
type Defaults struct {
	Count   int
	QueueID int
}

// AnalysisProcessor handles historical analysis jobs.
type AnalysisProcessor struct {
	history   HistorySource
	analyzer  *aggregate.Analyzer
	writer    RunWriter
	refresher ViewRefresher
	defaults  Defaults
	metrics   *metrics.Collector
}

// NewAnalysisProcessor creates a new analysis processor. refresher and m may be nil.
func NewAnalysisProcessor(history HistorySource, analyzer *aggregate.Analyzer, writer RunWriter, refresher ViewRefresher, defaults Defaults, m *metrics.Collector) *AnalysisProcessor {
	return &AnalysisProcessor{
		history:   history,
		analyzer:  analyzer,
		writer:    writer,
		refresher: refresher,
		defaults:  defaults,
		metrics:   m,
	}
}

// Handle processes a single analysis job from the queue. Malformed jobs and
// unknown players fail permanently; an empty history is logged and acknowledged.
func (p *AnalysisProcessor) Handle(ctx context.Context, payload []byte) error {
	logger := logging.Logger()
	startTime := time.Now()

	// Parse job payload
	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return queue.Permanent(fmt.Errorf("unmarshal job payload: %w", err))
	}
	if err := job.Validate(); err != nil {
		return queue.Permanent(err)
	}

	req := riot.HistoryRequest{
		PUUID:    job.PUUID,
		GameName: job.GameName,
		TagLine:  job.TagLine,
		Count:    job.Count,
		QueueID:  job.QueueID,
	}
	if req.Count == 0 {
		req.Count = p.defaults.Count
	}
	if req.QueueID == 0 {
		req.QueueID = p.defaults.QueueID
	}

	logger.Infof("processing analysis job for %s (%d matches, queue %d)", playerLabel(job), req.Count, req.QueueID)

	// Fetch history
	puuid, matches, err := p.history.Fetch(ctx, req)
	if err != nil {
		p.metrics.ObserveRun(StatusFailed, 0, 0, time.Since(startTime))
		if errors.Is(err, riot.ErrNotFound) || errors.Is(err, riot.ErrForbidden) {
			return queue.Permanent(fmt.Errorf("fetch history: %w", err))
		}
		return fmt.Errorf("fetch history: %w", err)
	}

	logger.Infof("fetched %d matches for %s", len(matches), puuid)

	// Analyze
	set, err := p.analyzer.Analyze(matches)
	if errors.Is(err, aggregate.ErrNoGamesFound) || errors.Is(err, aggregate.ErrNoMatchesAnalyzed) {
		logger.Warnf("nothing to analyze for %s: %v", puuid, err)
		p.metrics.ObserveRun(StatusNoGames, 0, len(matches), time.Since(startTime))
		return nil
	}
	if err != nil {
		p.metrics.ObserveRun(StatusFailed, 0, 0, time.Since(startTime))
		return fmt.Errorf("analyze matches: %w", err)
	}

	logger.Infof("analyzed %d matches for %s, skipped %d", len(set.Records), puuid, len(set.Skipped))

	// Write to database
	runID, err := p.writer.WriteRun(ctx, puuid, set)
	if err != nil {
		p.metrics.ObserveRun(StatusFailed, len(set.Records), len(set.Skipped), time.Since(startTime))
		return fmt.Errorf("write run: %w", err)
	}

	// Refresh summary views
	if p.refresher != nil {
		if err := p.refresher.RefreshAll(ctx); err != nil {
			logger.Warnf("view refresh failed after run %s: %v", runID, err)
		}
	}

	elapsed := time.Since(startTime)
	p.metrics.ObserveRun(StatusOK, len(set.Records), len(set.Skipped), elapsed)
	logger.Infof("analysis job completed for %s (run %s) in %v", puuid, runID, elapsed)

	return nil
}

func playerLabel(job JobPayload) string {
	if job.PUUID != "" {
		return job.PUUID
	}
	return job.GameName + "#" + job.TagLine
}
