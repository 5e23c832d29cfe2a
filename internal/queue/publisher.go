package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lolstats/internal/live"
)

const defaultLiveChannel = "live_snapshots"

// LiveMessage is the pub/sub payload published after every completed poll.
type LiveMessage struct {
	PUUID       string         `json:"puuid,omitempty"`
	Phase       string         `json:"phase"`
	GameActive  bool           `json:"gameActive"`
	Current     *live.Snapshot `json:"current"`
	Previous    *live.Snapshot `json:"previous"`
	PublishedAt time.Time      `json:"publishedAt"`
}

// NewLiveMessage builds the message for a session state.
func NewLiveMessage(puuid string, state *live.State, now time.Time) LiveMessage {
	return LiveMessage{
		PUUID:       puuid,
		Phase:       state.Phase.String(),
		GameActive:  state.GameActive(),
		Current:     state.Current,
		Previous:    state.Previous,
		PublishedAt: now,
	}
}

// Publisher publishes live session states on a redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
	puuid   string
}

// NewPublisher creates a publisher. An empty channel selects the default one.
func NewPublisher(client *redis.Client, channel, puuid string) *Publisher {
	if channel == "" {
		channel = defaultLiveChannel
	}
	return &Publisher{client: client, channel: channel, puuid: puuid}
}

// Publish sends state to every subscriber of the channel.
func (p *Publisher) Publish(ctx context.Context, state *live.State) error {
	payload, err := json.Marshal(NewLiveMessage(p.puuid, state, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("encode live message: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}
