package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/ratelimit"

	"lolstats/internal/cache"
	"lolstats/internal/logging"
	"lolstats/internal/metrics"
)

var (
	// ErrNotFound is returned when the API answers 404 (unknown account or match).
	ErrNotFound = errors.New("riot api: not found")
	// ErrForbidden is returned on 401/403, usually an expired API key.
	ErrForbidden = errors.New("riot api: forbidden, check the API key")
)

const (
	maxRateLimitRetries   = 3
	defaultRetryAfter     = 10 * time.Second
	accountCacheDuration  = 24 * time.Hour
	matchIDsCacheDuration = 10 * time.Minute
	matchCacheDuration    = 7 * 24 * time.Hour
)

// Config holds the client settings.
type Config struct {
	APIKey            string
	Region            string // routing value: americas, europe, asia, sea
	RequestsPerSecond int
	BaseURL           string // overrides the regional host, mainly for tests
}

// Client is a rate-limited Riot API client whose responses are cached.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cache      cache.Store
	metrics    *metrics.Collector
	log        logging.Interface
}

// NewClient creates a Riot API client. store and m may be nil.
func NewClient(cfg Config, store cache.Store, m *metrics.Collector) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("riot api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		region := cfg.Region
		if region == "" {
			region = "americas"
		}
		base = fmt.Sprintf("https://%s.api.riotgames.com", strings.ToLower(region))
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 15
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    ratelimit.New(rps),
		cache:      store,
		metrics:    m,
		log:        logging.Component("riot"),
	}, nil
}

// AccountByRiotID fetches account info by Riot ID (gameName#tagLine).
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s", url.PathEscape(gameName), url.PathEscape(tagLine))
	key := fmt.Sprintf("account:%s:%s", strings.ToLower(gameName), strings.ToLower(tagLine))

	var account Account
	if err := c.get(ctx, "account", path, key, accountCacheDuration, &account); err != nil {
		return nil, err
	}
	if account.PUUID == "" {
		return nil, fmt.Errorf("account %s#%s: %w", gameName, tagLine, ErrNotFound)
	}
	return &account, nil
}

// MatchIDs fetches the most recent match ids of a player. queueID 0 means every queue.
func (c *Client) MatchIDs(ctx context.Context, puuid string, queueID, count int) ([]string, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	if queueID != 0 {
		q.Set("queue", strconv.Itoa(queueID))
	}
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?%s", url.PathEscape(puuid), q.Encode())
	key := fmt.Sprintf("matchids:%s:%d:%d", puuid, queueID, count)

	var ids []string
	if err := c.get(ctx, "match_ids", path, key, matchIDsCacheDuration, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Match fetches match details.
func (c *Client) Match(ctx context.Context, matchID string) (*Match, error) {
	var match Match
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID)
	if err := c.get(ctx, "match", path, "match:"+matchID, matchCacheDuration, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// Timeline fetches the match timeline.
func (c *Client) Timeline(ctx context.Context, matchID string) (*Timeline, error) {
	var timeline Timeline
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID) + "/timeline"
	if err := c.get(ctx, "timeline", path, "timeline:"+matchID, matchCacheDuration, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// get serves path from the cache when possible, otherwise from the API, and decodes it into out.
func (c *Client) get(ctx context.Context, endpoint, path, cacheKey string, ttl time.Duration, out interface{}) error {
	if c.cache != nil {
		body, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			if err := json.Unmarshal(body, out); err == nil {
				c.metrics.ObserveRiot(endpoint, "cache")
				return nil
			}
			c.log.Warnf("discarding unreadable cache entry %s", cacheKey)
		case !errors.Is(err, cache.ErrMiss):
			c.log.Warnf("cache read %s failed: %v", cacheKey, err)
		}
	}

	body, err := c.do(ctx, endpoint, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, ttl); err != nil {
			c.log.Warnf("cache write %s failed: %v", cacheKey, err)
		}
	}
	return nil
}

// do makes a rate-limited request, waiting out 429 answers a bounded number of times.
func (c *Client) do(ctx context.Context, endpoint, path string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		c.limiter.Take()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", endpoint, err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.ObserveRiot(endpoint, "error")
			return nil, fmt.Errorf("%s request: %w", endpoint, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRateLimitRetries:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			c.metrics.ObserveRiot(endpoint, "rate_limited")
			c.log.Warnf("rate limited on %s, waiting %s", endpoint, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		case resp.StatusCode == http.StatusNotFound:
			c.metrics.ObserveRiot(endpoint, "not_found")
			return nil, fmt.Errorf("%s %s: %w", endpoint, path, ErrNotFound)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			c.metrics.ObserveRiot(endpoint, "forbidden")
			return nil, ErrForbidden
		case resp.StatusCode != http.StatusOK:
			c.metrics.ObserveRiot(endpoint, "error")
			return nil, fmt.Errorf("%s request failed with status %d", endpoint, resp.StatusCode)
		}

		if readErr != nil {
			return nil, fmt.Errorf("read %s response: %w", endpoint, readErr)
		}
		c.metrics.ObserveRiot(endpoint, "ok")
		return body, nil
	}
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
