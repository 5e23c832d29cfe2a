package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolstats/internal/live"
)

func TestRetryCounterKey(t *testing.T) {
	a := retryCounterKey("analyze_matches", []byte(`{"puuid":"a"}`))
	b := retryCounterKey("analyze_matches", []byte(`{"puuid":"b"}`))

	assert.True(t, strings.HasPrefix(a, "analyze_matches:retry-count:"))
	assert.Len(t, strings.TrimPrefix(a, "analyze_matches:retry-count:"), 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, retryCounterKey("analyze_matches", []byte(`{"puuid":"a"}`)))
}

func TestNewRedisQueueDefaultKey(t *testing.T) {
	assert.Equal(t, defaultAnalysisQueueKey, NewRedisQueue(nil, "").Key())
	assert.Equal(t, "jobs", NewRedisQueue(nil, "jobs").Key())
}

func TestPermanent(t *testing.T) {
	cause := errors.New("bad payload")
	err := Permanent(cause)

	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, cause, ErrPermanent)
}

func TestNewLiveMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cur := &live.Snapshot{GameTime: 125}
	state := &live.State{Phase: live.PhaseGameActive, Current: cur, LastValid: cur}

	msg := NewLiveMessage("p1", state, now)
	assert.True(t, msg.GameActive)
	assert.Equal(t, "gameActive", msg.Phase)
	assert.Same(t, cur, msg.Current)
	assert.Nil(t, msg.Previous)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "p1", decoded["puuid"])
	assert.Nil(t, decoded["previous"])
	current, ok := decoded["current"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 125.0, current["gameTime"])
}
