package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolstats/internal/aggregate"
	"lolstats/internal/metrics"
	"lolstats/internal/queue"
	"lolstats/internal/riot"
)

type fakeHistory struct {
	puuid   string
	matches []aggregate.MatchInput
	err     error
	got     riot.HistoryRequest
}

func (f *fakeHistory) Fetch(_ context.Context, req riot.HistoryRequest) (string, []aggregate.MatchInput, error) {
	f.got = req
	return f.puuid, f.matches, f.err
}

type fakeWriter struct {
	puuid string
	set   *aggregate.AnalysisSet
	err   error
	calls int
}

func (f *fakeWriter) WriteRun(_ context.Context, puuid string, set *aggregate.AnalysisSet) (uuid.UUID, error) {
	f.calls++
	f.puuid = puuid
	f.set = set
	return uuid.New(), f.err
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshAll(context.Context) error {
	f.calls++
	return f.err
}

func killMatch(id string, outcome aggregate.Outcome) aggregate.MatchInput {
	return aggregate.MatchInput{
		MatchID:  id,
		PlayerID: 2,
		Outcome:  outcome,
		Events: []aggregate.Event{
			{Kind: aggregate.EventChampionKill, Timestamp: 90, KillerID: 2, VictimID: 8},
		},
	}
}

func newTestProcessor(h HistorySource, w RunWriter, r ViewRefresher) (*AnalysisProcessor, *metrics.Collector) {
	m := metrics.New(prometheus.NewRegistry())
	analyzer := aggregate.NewAnalyzer(aggregate.StaticItems{}, aggregate.DefaultOptions())
	return NewAnalysisProcessor(h, analyzer, w, r, Defaults{Count: 20, QueueID: 420}, m), m
}

func TestHandleWritesRun(t *testing.T) {
	history := &fakeHistory{
		puuid:   "puuid-1",
		matches: []aggregate.MatchInput{killMatch("M1", aggregate.OutcomeWin), killMatch("M2", aggregate.OutcomeLoss), {MatchID: "M3"}},
	}
	writer := &fakeWriter{}
	refresher := &fakeRefresher{}
	p, m := newTestProcessor(history, writer, refresher)

	err := p.Handle(context.Background(), []byte(`{"game_name":"Faker","tag_line":"KR1"}`))
	require.NoError(t, err)

	assert.Equal(t, riot.HistoryRequest{GameName: "Faker", TagLine: "KR1", Count: 20, QueueID: 420}, history.got)
	require.Equal(t, 1, writer.calls)
	assert.Equal(t, "puuid-1", writer.puuid)
	assert.Len(t, writer.set.Records, 2)
	assert.Equal(t, []string{"M3"}, writer.set.Skipped)
	assert.Equal(t, 1, refresher.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues(StatusOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MatchesAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchesSkipped))
}

func TestHandleKeepsExplicitCountAndQueue(t *testing.T) {
	history := &fakeHistory{puuid: "p", matches: []aggregate.MatchInput{killMatch("M1", aggregate.OutcomeWin)}}
	p, _ := newTestProcessor(history, &fakeWriter{}, nil)

	require.NoError(t, p.Handle(context.Background(), []byte(`{"puuid":"p","count":5,"queue_id":440}`)))
	assert.Equal(t, riot.HistoryRequest{PUUID: "p", Count: 5, QueueID: 440}, history.got)
}

func TestHandleRejectsMalformedJobs(t *testing.T) {
	p, _ := newTestProcessor(&fakeHistory{}, &fakeWriter{}, nil)

	for _, payload := range []string{`not json`, `{}`, `{"game_name":"a"}`, `{"puuid":"p","count":500}`} {
		err := p.Handle(context.Background(), []byte(payload))
		assert.ErrorIs(t, err, queue.ErrPermanent, payload)
	}
}

func TestHandleEmptyHistoryIsAcknowledged(t *testing.T) {
	writer := &fakeWriter{}
	p, m := newTestProcessor(&fakeHistory{puuid: "p"}, writer, nil)

	require.NoError(t, p.Handle(context.Background(), []byte(`{"puuid":"p"}`)))
	assert.Zero(t, writer.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues(StatusNoGames)))
}

func TestHandleUnidentifiableHistoryIsAcknowledged(t *testing.T) {
	writer := &fakeWriter{}
	p, _ := newTestProcessor(&fakeHistory{puuid: "p", matches: []aggregate.MatchInput{{MatchID: "M1"}}}, writer, nil)

	require.NoError(t, p.Handle(context.Background(), []byte(`{"puuid":"p"}`)))
	assert.Zero(t, writer.calls)
}

func TestHandleFetchErrors(t *testing.T) {
	p, m := newTestProcessor(&fakeHistory{err: riot.ErrNotFound}, &fakeWriter{}, nil)
	err := p.Handle(context.Background(), []byte(`{"puuid":"p"}`))
	assert.ErrorIs(t, err, queue.ErrPermanent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues(StatusFailed)))

	transient := errors.New("connection reset")
	p, _ = newTestProcessor(&fakeHistory{err: transient}, &fakeWriter{}, nil)
	err = p.Handle(context.Background(), []byte(`{"puuid":"p"}`))
	assert.ErrorIs(t, err, transient)
	assert.NotErrorIs(t, err, queue.ErrPermanent)
}

func TestHandleWriteErrorIsRetried(t *testing.T) {
	history := &fakeHistory{puuid: "p", matches: []aggregate.MatchInput{killMatch("M1", aggregate.OutcomeWin)}}
	refresher := &fakeRefresher{}
	p, _ := newTestProcessor(history, &fakeWriter{err: errors.New("db down")}, refresher)

	err := p.Handle(context.Background(), []byte(`{"puuid":"p"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, queue.ErrPermanent)
	assert.Zero(t, refresher.calls)
}

func TestHandleRefreshFailureDoesNotFailJob(t *testing.T) {
	history := &fakeHistory{puuid: "p", matches: []aggregate.MatchInput{killMatch("M1", aggregate.OutcomeWin)}}
	p, _ := newTestProcessor(history, &fakeWriter{}, &fakeRefresher{err: errors.New("locked")})

	require.NoError(t, p.Handle(context.Background(), []byte(`{"puuid":"p"}`)))
}
