package live

import (
	"fmt"
	"sync/atomic"
)

// Phase is the reconciliation state of a live session.
type Phase int

const (
	PhaseNoGame Phase = iota
	PhaseGameActive
	PhaseGameEnded
)

// Phases lists every phase, in declaration order.
var Phases = []Phase{PhaseNoGame, PhaseGameActive, PhaseGameEnded}

func (p Phase) String() string {
	switch p {
	case PhaseNoGame:
		return "noGame"
	case PhaseGameActive:
		return "gameActive"
	case PhaseGameEnded:
		return "gameEnded"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is an immutable view of a session. Current is what consumers should display
// for the running game; Previous is the frozen final snapshot of the prior game;
// LastValid is the most recent non-empty snapshot.
type State struct {
	Phase     Phase
	Current   *Snapshot
	Previous  *Snapshot
	LastValid *Snapshot
}

// GameActive reports whether a game is in progress.
func (s *State) GameActive() bool {
	return s.Phase == PhaseGameActive
}

// Session owns the live reconciliation state. It has a single writer (the poll loop)
// and any number of readers; every update swaps in a new *State.
type Session struct {
	state atomic.Pointer[State]
}

// NewSession creates a session with no game.
func NewSession() *Session {
	s := &Session{}
	s.state.Store(&State{Phase: PhaseNoGame})
	return s
}

// Load returns the current state. The returned value must not be modified.
func (s *Session) Load() *State {
	return s.state.Load()
}

// ApplySnapshot reconciles a successful poll and returns the resulting state.
func (s *Session) ApplySnapshot(snap *Snapshot) *State {
	cur := s.Load()
	next := *cur

	if snap.Empty() {
		// A gap inside a running game keeps presenting the last valid snapshot.
		if cur.Phase == PhaseGameActive {
			next.Current = cur.LastValid
			return s.swap(&next)
		}
		return cur
	}

	switch cur.Phase {
	case PhaseGameActive:
		if snap.NewGameSince(cur.Current) {
			next.Previous = cur.Current
		}
	default:
		if last := cur.LastValid; last != nil && !resumes(snap, last) {
			next.Previous = last
		}
	}

	next.Phase = PhaseGameActive
	if snap.Ended {
		next.Phase = PhaseGameEnded
	}
	next.Current = snap
	next.LastValid = snap
	return s.swap(&next)
}

// MarkNoGame handles a poll that found no active game. A running game ends with its
// last valid snapshot frozen as Current; an ended game settles into NoGame, still
// presenting that final snapshot until the next game replaces it.
func (s *Session) MarkNoGame() *State {
	cur := s.Load()
	next := *cur
	switch cur.Phase {
	case PhaseGameActive:
		next.Phase = PhaseGameEnded
		next.Current = cur.LastValid
	case PhaseGameEnded:
		next.Phase = PhaseNoGame
	default:
		return cur
	}
	return s.swap(&next)
}

// MarkUnreachable handles a poll that could not reach the live client. The state
// transition is the same as MarkNoGame; backoff is the poller's concern.
func (s *Session) MarkUnreachable() *State {
	return s.MarkNoGame()
}

func (s *Session) swap(next *State) *State {
	s.state.Store(next)
	return next
}

// resumes reports whether snap continues the game last seen in last: after a short
// outage of the live client, or while the post-game screen still serves an ended game.
func resumes(snap, last *Snapshot) bool {
	if snap.NewGameSince(last) {
		return false
	}
	return !last.Ended || snap.Ended
}
