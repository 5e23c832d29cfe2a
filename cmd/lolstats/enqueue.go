package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lolstats/internal/processor"
	"lolstats/internal/queue"
)

var (
	enqueueCount   int
	enqueueQueueID int
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <puuid | gameName#tagLine>",
	Short: "Queue a historical analysis job",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueue,
}

func init() {
	enqueueCmd.Flags().IntVar(&enqueueCount, "count", 0, "number of recent matches (0 uses MATCH_COUNT)")
	enqueueCmd.Flags().IntVar(&enqueueQueueID, "queue", 0, "queue id filter (0 uses MATCH_QUEUE_ID)")
}

// jobFor builds the job payload for a PUUID or a gameName#tagLine Riot ID.
func jobFor(player string, count, queueID int) (processor.JobPayload, error) {
	job := processor.JobPayload{Count: count, QueueID: queueID}
	if name, tag, ok := strings.Cut(player, "#"); ok {
		job.GameName, job.TagLine = name, tag
	} else {
		job.PUUID = player
	}
	return job, job.Validate()
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	job, err := jobFor(args[0], enqueueCount, enqueueQueueID)
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	q := queue.NewRedisQueue(redisClient, cfg.RedisQueue)
	if err := q.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Queued analysis of %s on %s\n", args[0], q.Key())
	return nil
}
