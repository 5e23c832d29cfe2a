package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lolstats/internal/logging"
)

const (
	defaultAnalysisQueueKey = "analyze_matches"
	retrySuffix             = ":retry"
	dlqSuffix               = ":dlq"
	retryCounterSuffix      = ":retry-count:"
	maxRetryAttempts        = 3
	brPopBlock              = 5 * time.Second
)

// Handler processes one job payload.
type Handler func(ctx context.Context, payload []byte) error

// ErrPermanent marks a job failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// Permanent wraps err so the queue moves the job straight to the DLQ.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// RedisQueue implements queue operations using Redis lists.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a Redis-backed queue helper. An empty key selects the default
// analysis queue.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = defaultAnalysisQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

// Key returns the list the queue consumes from.
func (q *RedisQueue) Key() string {
	return q.key
}

// Enqueue JSON-encodes job and pushes it onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job any) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Consume uses BRPOP to deliver jobs to the handler until the context is canceled.
func (q *RedisQueue) Consume(ctx context.Context, handler Handler) error {
	return q.ConsumeConcurrent(ctx, 1, 0, handler)
}

// ConsumeConcurrent uses BRPOP to feed jobs to a worker pool for concurrent processing.
func (q *RedisQueue) ConsumeConcurrent(ctx context.Context, workerCount, bufferSize int, handler Handler) error {
	logger := logging.Logger()
	if workerCount < 1 {
		workerCount = 1
	}
	retryKey := q.key + retrySuffix

	// Create job channel for workers
	jobChan := make(chan []byte, bufferSize)
	var wg sync.WaitGroup

	// Start worker goroutines
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for payload := range jobChan {
				q.process(ctx, workerID, payload, handler)
			}
			logger.Infof("worker %d: exiting", workerID)
		}(i)
	}

	logger.Infof("started %d concurrent workers for queue %s", workerCount, q.key)

	stop := func() error {
		close(jobChan)
		wg.Wait()
		return ctx.Err()
	}

	// BRPOP loop feeding jobs to workers
	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return stop()
		}

		result, err := q.client.BRPop(ctx, brPopBlock, retryKey, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				logger.Warnf("redis BRPOP canceled: %v", ctx.Err())
				return stop()
			}
			logger.Warnf("redis BRPOP error: %v", err)
			continue
		}
		if len(result) < 2 {
			continue
		}

		payload := []byte(result[1])
		select {
		case jobChan <- payload:
		case <-ctx.Done():
			return stop()
		}
	}
}

func (q *RedisQueue) process(ctx context.Context, workerID int, payload []byte, handler Handler) {
	logger := logging.Logger()
	err := handler(ctx, payload)
	switch {
	case err == nil:
		_ = q.clearRetryCounter(ctx, payload)
	case errors.Is(err, ErrPermanent):
		logger.Errorf("worker %d: moving job to DLQ: %v", workerID, err)
		if err := q.deadLetter(ctx, payload); err != nil {
			logger.Errorf("worker %d: DLQ push failed: %v", workerID, err)
		}
	default:
		logger.Warnf("worker %d: handler error, scheduling retry: %v", workerID, err)
		if err := q.handleRetry(ctx, payload); err != nil {
			logger.Errorf("worker %d: retry handling failed: %v", workerID, err)
		}
	}
}

func (q *RedisQueue) handleRetry(ctx context.Context, payload []byte) error {
	logger := logging.Logger()
	attempt, err := q.incrementRetryCounter(ctx, payload)
	if err != nil {
		return err
	}
	if attempt > maxRetryAttempts {
		logger.Warnf("moving job to DLQ after %d attempts", attempt-1)
		return q.deadLetter(ctx, payload)
	}
	return q.client.LPush(ctx, q.key+retrySuffix, payload).Err()
}

func (q *RedisQueue) deadLetter(ctx context.Context, payload []byte) error {
	err := q.client.LPush(ctx, q.key+dlqSuffix, payload).Err()
	_ = q.clearRetryCounter(ctx, payload)
	return err
}

func (q *RedisQueue) incrementRetryCounter(ctx context.Context, payload []byte) (int64, error) {
	key := retryCounterKey(q.key, payload)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = q.client.Expire(ctx, key, 24*time.Hour).Err()
	return count, nil
}

func (q *RedisQueue) clearRetryCounter(ctx context.Context, payload []byte) error {
	return q.client.Del(ctx, retryCounterKey(q.key, payload)).Err()
}

func retryCounterKey(queue string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", queue, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
