package ddragon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"lolstats/internal/aggregate"
	"lolstats/internal/cache"
	"lolstats/internal/logging"
)

// DefaultBaseURL is the public Data Dragon host.
const DefaultBaseURL = "https://ddragon.leagueoflegends.com"

const itemsCacheDuration = 24 * time.Hour

// itemData mirrors one entry of item.json.
type itemData struct {
	Name string   `json:"name"`
	From []string `json:"from"`
	Gold struct {
		Base  float64 `json:"base"`
		Total float64 `json:"total"`
		Sell  float64 `json:"sell"`
	} `json:"gold"`
}

// Registry holds the static item table of one Data Dragon version and resolves item ids
// for the aggregator.
type Registry struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Store

	mu      sync.RWMutex
	items   map[int]aggregate.ItemInfo
	version string
}

// NewRegistry creates an empty registry. store may be nil.
func NewRegistry(baseURL string, store cache.Store) *Registry {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Registry{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      store,
		items:      make(map[int]aggregate.ItemInfo),
	}
}

// Load fetches the item table of version, or of the latest version when version is empty.
func (r *Registry) Load(ctx context.Context, version string) error {
	logger := logging.Logger()

	if version == "" {
		latest, err := r.latestVersion(ctx)
		if err != nil {
			return err
		}
		version = latest
	}

	raw, err := r.itemJSON(ctx, version)
	if err != nil {
		return err
	}

	var doc struct {
		Data map[string]itemData `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse items: %w", err)
	}

	items := make(map[int]aggregate.ItemInfo, len(doc.Data))
	for idStr, item := range doc.Data {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		info := aggregate.ItemInfo{
			Name: item.Name,
			Gold: aggregate.ItemGold{Base: item.Gold.Base, Total: item.Gold.Total, Sell: item.Gold.Sell},
		}
		for _, from := range item.From {
			if fid, err := strconv.Atoi(from); err == nil {
				info.From = append(info.From, fid)
			}
		}
		items[id] = info
	}

	r.mu.Lock()
	r.items = items
	r.version = version
	r.mu.Unlock()

	logger.Infof("Loaded %d items from Data Dragon (v%s)", len(items), version)
	return nil
}

// LoadOrWarn loads the latest item table. When Data Dragon cannot be reached it logs a
// warning and returns false; the registry then stays empty and every item resolves to
// zero gold.
func (r *Registry) LoadOrWarn(ctx context.Context) bool {
	if err := r.Load(ctx, ""); err != nil {
		logging.Logger().Warnf("item data unavailable, continuing without it: %v", err)
		return false
	}
	return true
}

// Resolve implements aggregate.ItemResolver.
func (r *Registry) Resolve(itemID int) (aggregate.ItemInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.items[itemID]
	return info, ok
}

// Version returns the loaded version.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Len returns the number of loaded items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry) latestVersion(ctx context.Context) (string, error) {
	body, err := r.fetch(ctx, r.baseURL+"/api/versions.json")
	if err != nil {
		return "", fmt.Errorf("failed to fetch versions: %w", err)
	}
	var versions []string
	if err := json.Unmarshal(body, &versions); err != nil {
		return "", fmt.Errorf("failed to parse versions: %w", err)
	}
	if len(versions) == 0 {
		return "", errors.New("no versions available")
	}
	return versions[0], nil
}

// itemJSON returns item.json of version, through the cache when one is configured.
// Versioned documents never change, so a cached copy is always valid.
func (r *Registry) itemJSON(ctx context.Context, version string) ([]byte, error) {
	key := "ddragon:items:" + version
	if r.cache != nil {
		if body, err := r.cache.Get(ctx, key); err == nil {
			return body, nil
		}
	}

	body, err := r.fetch(ctx, fmt.Sprintf("%s/cdn/%s/data/en_US/item.json", r.baseURL, version))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, body, itemsCacheDuration); err != nil {
			logging.Logger().Warnf("failed to cache item data: %v", err)
		}
	}
	return body, nil
}

func (r *Registry) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
