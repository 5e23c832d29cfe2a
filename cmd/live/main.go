package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"lolstats/internal/aggregate"
	"lolstats/internal/cache"
	"lolstats/internal/config"
	"lolstats/internal/db"
	"lolstats/internal/ddragon"
	"lolstats/internal/live"
	"lolstats/internal/logging"
	"lolstats/internal/metrics"
	"lolstats/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.LogLevel)
	if err := cfg.RequireLive(); err != nil {
		logger.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry); err != nil {
				logger.Errorf("metrics server stopped: %v", err)
			}
		}()
	}

	var (
		store       cache.Store = cache.NewMemory()
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Errorf("invalid redis url: %v", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
		store = cache.NewRedisCache(redisClient, "lolstats:")
	}

	// without item data, inventory gold falls back to the prices reported by the game
	var items aggregate.ItemResolver
	if itemData := ddragon.NewRegistry("", store); itemData.LoadOrWarn(ctx) {
		items = itemData
	}

	opts := aggregate.DefaultOptions()
	opts.AllyIncludesPlayer = cfg.AllyIncludesPlayer

	session := live.NewSession()
	poller := live.NewPoller(
		live.NewClient(cfg.LiveURL, items, opts),
		session,
		live.PollerConfig{FastInterval: cfg.LiveFastInterval, RetryInterval: cfg.LiveRetryInterval},
		m,
	)

	lastPhase := session.Load().Phase
	poller.Subscribe(func(state *live.State) {
		if state.Phase != lastPhase {
			logger.Infof("live phase %s -> %s", lastPhase, state.Phase)
			lastPhase = state.Phase
		}
	})

	if redisClient != nil {
		publisher := queue.NewPublisher(redisClient, cfg.RedisLiveChannel, cfg.LivePUUID)
		poller.Subscribe(func(state *live.State) {
			if err := publisher.Publish(ctx, state); err != nil {
				logger.Warnf("live publish failed: %v", err)
			}
		})
	}

	if cfg.DBURL != "" {
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			logger.Errorf("db connection failed: %v", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Errorf("schema setup failed: %v", err)
			os.Exit(1)
		}

		writer := db.NewLiveWriter(pool, cfg.LivePUUID)
		poller.Subscribe(func(state *live.State) {
			if err := writer.WriteState(ctx, state); err != nil {
				logger.Warnf("live slot write failed: %v", err)
			}
		})
	}

	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("live polling ended: %v", err)
		os.Exit(1)
	}
}
