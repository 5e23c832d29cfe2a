package live

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lolstats/internal/aggregate"
)

var (
	// ErrNoActiveGame is returned when the live client answers but no game is running.
	ErrNoActiveGame = errors.New("no active game")
	// ErrUnreachable is returned when the live client cannot be reached at all.
	ErrUnreachable = errors.New("live client unreachable")
)

// StatusError is returned for any other non-200 answer of the live client.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

const allGameDataPath = "/liveclientdata/allgamedata"

// Client handles communication with the live client API (127.0.0.1:2999).
type Client struct {
	baseURL    string
	httpClient *http.Client
	items      aggregate.ItemResolver
	opts       aggregate.Options
	now        func() time.Time
}

// NewClient creates a live client for baseURL. The game serves a self-signed
// certificate, so verification is skipped.
func NewClient(baseURL string, items aggregate.ItemResolver, opts aggregate.Options) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		},
		items: items,
		opts:  opts,
		now:   time.Now,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// GameData fetches the raw allgamedata document.
func (c *Client) GameData(ctx context.Context) (*GameData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+allGameDataPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoActiveGame
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var data GameData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse game data: %w", err)
	}
	return &data, nil
}

// Fetch reads the live game and folds it into a Snapshot.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	data, err := c.GameData(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(data, c.items, c.opts, c.now().UTC())
}
