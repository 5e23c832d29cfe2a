package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	minRetryInterval = 10 * time.Second
	maxRetryInterval = 120 * time.Second
)

// Config holds runtime configuration for the analysis worker and the live tracker.
type Config struct {
	DBURL            string
	RedisURL         string
	RedisQueue       string
	RedisLiveChannel string
	WorkerCount      int
	JobBufferSize    int

	RiotAPIKey       string
	RiotRegion       string
	RiotRequestsPerS int
	MatchCount       int
	MatchQueueID     int
	FetchConcurrency int

	// AllyIncludesPlayer folds the queried player's own events into the ally bucket as well.
	AllyIncludesPlayer bool

	LiveURL           string
	LivePUUID         string
	LiveFastInterval  time.Duration
	LiveRetryInterval time.Duration

	MetricsAddr string
	LogLevel    string
}

// Load builds a Config from environment variables. A .env file in the working
// directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{
		DBURL:            os.Getenv("DB_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisQueue:       getString("REDIS_QUEUE", "analyze_matches"),
		RedisLiveChannel: getString("REDIS_LIVE_CHANNEL", "live_snapshots"),
		RiotAPIKey:       os.Getenv("RIOT_API_KEY"),
		RiotRegion:       getString("RIOT_REGION", "americas"),
		LiveURL:          getString("LIVE_URL", "https://127.0.0.1:2999"),
		LivePUUID:        os.Getenv("LIVE_PUUID"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		LogLevel:         getString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.WorkerCount, err = getInt("WORKER_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.JobBufferSize, err = getInt("JOB_BUFFER_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.RiotRequestsPerS, err = getInt("RIOT_REQUESTS_PER_SECOND", 15); err != nil {
		return nil, err
	}
	if cfg.MatchCount, err = getInt("MATCH_COUNT", 20); err != nil {
		return nil, err
	}
	if cfg.MatchQueueID, err = getInt("MATCH_QUEUE_ID", 420); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = getInt("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.AllyIncludesPlayer, err = getBool("ALLY_INCLUDES_PLAYER", true); err != nil {
		return nil, err
	}
	if cfg.LiveFastInterval, err = getDuration("LIVE_FAST_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.LiveRetryInterval, err = getDuration("LIVE_RETRY_INTERVAL", maxRetryInterval); err != nil {
		return nil, err
	}

	if cfg.LiveFastInterval <= 0 {
		return nil, fmt.Errorf("LIVE_FAST_INTERVAL must be positive")
	}
	if cfg.LiveRetryInterval < minRetryInterval || cfg.LiveRetryInterval > maxRetryInterval {
		return nil, fmt.Errorf("LIVE_RETRY_INTERVAL must be between %s and %s", minRetryInterval, maxRetryInterval)
	}
	if cfg.MatchCount < 1 || cfg.MatchCount > 100 {
		return nil, fmt.Errorf("MATCH_COUNT must be between 1 and 100")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	return cfg, nil
}

// RequireWorker checks the settings the historical analysis worker cannot run without.
func (c *Config) RequireWorker() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.RiotAPIKey == "" {
		return fmt.Errorf("RIOT_API_KEY is required")
	}
	return nil
}

// RequireLive checks the settings the live tracker cannot run without.
// Postgres and redis are optional for live tracking.
func (c *Config) RequireLive() error {
	if c.LiveURL == "" {
		return fmt.Errorf("LIVE_URL is required")
	}
	if c.DBURL != "" && c.LivePUUID == "" {
		return fmt.Errorf("LIVE_PUUID is required when DB_URL is set")
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
