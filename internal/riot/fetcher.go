package riot

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lolstats/internal/aggregate"
	"lolstats/internal/logging"
)

// API is the subset of Client used by the history fetcher.
type API interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error)
	MatchIDs(ctx context.Context, puuid string, queueID, count int) ([]string, error)
	Match(ctx context.Context, matchID string) (*Match, error)
	Timeline(ctx context.Context, matchID string) (*Timeline, error)
}

// HistoryRequest selects the matches to fetch.
type HistoryRequest struct {
	PUUID    string
	GameName string
	TagLine  string
	Count    int
	QueueID  int
}

// HistoryFetcher downloads match and timeline pairs and turns them into aggregator input.
type HistoryFetcher struct {
	api         API
	concurrency int
	log         logging.Interface
}

// NewHistoryFetcher creates a fetcher downloading at most concurrency matches at once.
func NewHistoryFetcher(api API, concurrency int) *HistoryFetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &HistoryFetcher{api: api, concurrency: concurrency, log: logging.Component("history")}
}

// ResolvePUUID returns the request's PUUID, looking it up by Riot ID when absent.
func (f *HistoryFetcher) ResolvePUUID(ctx context.Context, req HistoryRequest) (string, error) {
	if req.PUUID != "" {
		return req.PUUID, nil
	}
	if req.GameName == "" || req.TagLine == "" {
		return "", errors.New("either puuid or game name and tag line are required")
	}
	account, err := f.api.AccountByRiotID(ctx, req.GameName, req.TagLine)
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}
	return account.PUUID, nil
}

// Fetch returns the requested history in match-id order. Matches that disappeared
// (404) are skipped; any other failure aborts the fetch.
func (f *HistoryFetcher) Fetch(ctx context.Context, req HistoryRequest) (string, []aggregate.MatchInput, error) {
	puuid, err := f.ResolvePUUID(ctx, req)
	if err != nil {
		return "", nil, err
	}

	ids, err := f.api.MatchIDs(ctx, puuid, req.QueueID, req.Count)
	if err != nil {
		return puuid, nil, fmt.Errorf("list matches: %w", err)
	}
	f.log.Infof("fetching %d matches for %s", len(ids), puuid)

	results := make([]*aggregate.MatchInput, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			in, err := f.fetchOne(gctx, id, puuid)
			if errors.Is(err, ErrNotFound) {
				f.log.Warnf("match %s not found, skipping", id)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return puuid, nil, err
	}

	out := make([]aggregate.MatchInput, 0, len(results))
	for _, in := range results {
		if in != nil {
			out = append(out, *in)
		}
	}
	return puuid, out, nil
}

func (f *HistoryFetcher) fetchOne(ctx context.Context, matchID, puuid string) (*aggregate.MatchInput, error) {
	match, err := f.api.Match(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	tl, err := f.api.Timeline(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("timeline %s: %w", matchID, err)
	}
	in := MatchInput(match, tl, puuid)
	return &in, nil
}
