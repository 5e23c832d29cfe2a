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
	"lolstats/internal/logging"
	"lolstats/internal/metrics"
	"lolstats/internal/processor"
	"lolstats/internal/queue"
	"lolstats/internal/riot"
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
	if err := cfg.RequireWorker(); err != nil {
		logger.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

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

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry); err != nil {
				logger.Errorf("metrics server stopped: %v", err)
			}
		}()
	}

	store := cache.NewRedisCache(redisClient, "lolstats:")

	items := ddragon.NewRegistry("", store)
	items.LoadOrWarn(ctx)

	riotClient, err := riot.NewClient(riot.Config{
		APIKey:            cfg.RiotAPIKey,
		Region:            cfg.RiotRegion,
		RequestsPerSecond: cfg.RiotRequestsPerS,
	}, store, m)
	if err != nil {
		logger.Errorf("riot client setup failed: %v", err)
		os.Exit(1)
	}

	opts := aggregate.DefaultOptions()
	opts.AllyIncludesPlayer = cfg.AllyIncludesPlayer

	proc := processor.NewAnalysisProcessor(
		riot.NewHistoryFetcher(riotClient, cfg.FetchConcurrency),
		aggregate.NewAnalyzer(items, opts),
		db.NewRunWriter(pool),
		db.NewViewRefresher(pool),
		processor.Defaults{Count: cfg.MatchCount, QueueID: cfg.MatchQueueID},
		m,
	)
	q := queue.NewRedisQueue(redisClient, cfg.RedisQueue)

	// Use concurrent processing if worker count > 1
	if cfg.WorkerCount > 1 {
		logger.Infof("starting concurrent consumption with %d workers", cfg.WorkerCount)
		if err := q.ConsumeConcurrent(ctx, cfg.WorkerCount, cfg.JobBufferSize, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Infof("starting single-threaded consumption")
		if err := q.Consume(ctx, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	}
}
