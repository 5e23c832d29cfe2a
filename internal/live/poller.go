package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"lolstats/internal/logging"
	"lolstats/internal/metrics"
)

// Source produces one live snapshot per call.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Poll results reported to metrics and subscribers.
const (
	ResultOK          = "ok"
	ResultNoGame      = "no_game"
	ResultUnreachable = "unreachable"
	ResultError       = "error"
)

// PollerConfig holds the polling intervals.
type PollerConfig struct {
	FastInterval  time.Duration
	RetryInterval time.Duration
}

// Poller drives a Session from a Source. Only one fetch is ever in flight: the next
// tick is scheduled after the previous fetch has completed.
type Poller struct {
	source  Source
	session *Session
	cfg     PollerConfig
	metrics *metrics.Collector
	log     logging.Interface

	mu          sync.Mutex
	subscribers []func(*State)

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	slow bool // loop goroutine only
}

// NewPoller creates a poller. m may be nil.
func NewPoller(source Source, session *Session, cfg PollerConfig, m *metrics.Collector) *Poller {
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 120 * time.Second
	}
	return &Poller{
		source:  source,
		session: session,
		cfg:     cfg,
		metrics: m,
		log:     logging.Component("live"),
		stopCh:  make(chan struct{}),
	}
}

// Subscribe registers fn to be called with the latest state after every completed poll.
// Callbacks run on the poll goroutine and must not block for long.
func (p *Poller) Subscribe(fn func(*State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Session returns the session the poller writes to.
func (p *Poller) Session() *Session {
	return p.session
}

// Run polls until ctx is cancelled or Stop is called. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Infof("Live polling started (fast=%s retry=%s)", p.cfg.FastInterval, p.cfg.RetryInterval)
	p.metrics.SetInterval(p.cfg.FastInterval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Infof("Live polling stopped: %v", ctx.Err())
			return ctx.Err()
		case <-p.stopCh:
			p.log.Infof("Live polling stopped")
			return nil
		case <-timer.C:
		}

		next := p.poll(ctx)
		if p.stopped.Load() {
			p.log.Infof("Live polling stopped")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		timer.Reset(next)
	}
}

// Stop ends polling. A fetch still in flight completes but its result is discarded.
func (p *Poller) Stop() {
	p.stopped.Store(true)
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// poll performs one fetch, applies it and returns the delay before the next one.
func (p *Poller) poll(ctx context.Context) time.Duration {
	snap, err := p.source.Fetch(ctx)
	if p.stopped.Load() || ctx.Err() != nil {
		return p.cfg.FastInterval
	}

	var (
		state  *State
		result string
		slow   bool
	)
	switch {
	case err == nil:
		state = p.session.ApplySnapshot(snap)
		result = ResultOK
	case errors.Is(err, ErrNoActiveGame):
		state = p.session.MarkNoGame()
		result = ResultNoGame
	case errors.Is(err, ErrUnreachable):
		state = p.session.MarkUnreachable()
		result = ResultUnreachable
		slow = true
	default:
		p.log.Warnf("Live poll failed: %v", err)
		state = p.session.Load()
		result = ResultError
		slow = true
	}

	p.metrics.ObservePoll(result)
	p.metrics.SetPhase(state.Phase.String(), phaseNames())
	p.notify(state)

	return p.interval(slow, err)
}

// interval switches between the fast and the retry regime, logging each switch once.
func (p *Poller) interval(slow bool, err error) time.Duration {
	if slow != p.slow {
		p.slow = slow
		if slow {
			p.log.Warnf("Live client unavailable, retrying every %s: %v", p.cfg.RetryInterval, err)
			p.metrics.SetInterval(p.cfg.RetryInterval)
		} else {
			p.log.Infof("Live client reachable again, polling every %s", p.cfg.FastInterval)
			p.metrics.SetInterval(p.cfg.FastInterval)
		}
	}
	if slow {
		return p.cfg.RetryInterval
	}
	return p.cfg.FastInterval
}

func (p *Poller) notify(state *State) {
	p.mu.Lock()
	subs := make([]func(*State), len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func phaseNames() []string {
	names := make([]string, len(Phases))
	for i, ph := range Phases {
		names[i] = ph.String()
	}
	return names
}
