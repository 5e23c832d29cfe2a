package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lolstats/internal/logging"
)

// ViewRefresher refreshes the summary materialized views after a run is written.
type ViewRefresher struct {
	pool *pgxpool.Pool
}

// NewViewRefresher creates a new view refresher.
func NewViewRefresher(pool *pgxpool.Pool) *ViewRefresher {
	return &ViewRefresher{pool: pool}
}

// summaryViews lists the views rebuilt after each run. Each has a unique index so it
// can be refreshed concurrently with readers.
var summaryViews = []string{
	"mv_player_outcome_summary",
	"mv_player_latest_run",
}

// RefreshAll refreshes every summary view. A failing view is logged and skipped;
// an error is returned only when none could be refreshed.
func (r *ViewRefresher) RefreshAll(ctx context.Context) error {
	logger := logging.Logger()

	startTime := time.Now()
	refreshed := 0

	for _, view := range summaryViews {
		if err := r.refresh(ctx, view); err != nil {
			logger.Warnf("failed to refresh view %s: %v", view, err)
			continue
		}
		refreshed++
	}

	logger.Debugf("view refresh completed: %d/%d succeeded in %v", refreshed, len(summaryViews), time.Since(startTime))

	if refreshed == 0 {
		return fmt.Errorf("all view refreshes failed")
	}
	return nil
}

func (r *ViewRefresher) refresh(ctx context.Context, view string) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf("REFRESH MATERIALIZED VIEW CONCURRENTLY %s", view)); err != nil {
		return fmt.Errorf("refresh %s: %w", view, err)
	}
	return nil
}
