package stream

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle state of a streaming session.
type State int32

const (
	// StateActive means the exchange is in flight.
	StateActive State = iota

	// StateDone means the terminal sentinel arrived and all tokens were
	// delivered.
	StateDone

	// StateErrored means the session ended with a transport, protocol, or
	// truncation failure.
	StateErrored

	// StateCancelled means the caller aborted the session.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Session is the caller-held handle for one streaming exchange. It is
// created by Client.Ask and owned exclusively by that caller.
//
// A session reaches exactly one terminal state: done, errored, or
// cancelled. Cancellation is idempotent and is a no-op after any terminal
// state.
type Session struct {
	id     uuid.UUID
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(cancel context.CancelFunc) *Session {
	s := &Session{
		id:     uuid.New(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.state.Store(int32(StateActive))
	return s
}

// ID returns the unique identifier of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done returns a channel closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancel aborts the in-flight exchange. The blocked transport read observes
// the abort and stops; no callbacks are invoked after cancellation.
// Cancelling twice, or after the session completed naturally, is a no-op.
func (s *Session) Cancel() {
	if s.transition(StateCancelled) {
		s.cancel()
	}
}

// transition moves the session from active to the given terminal state.
// Returns false when another terminal transition already won, which is how
// the single-terminal-callback invariant is enforced.
func (s *Session) transition(to State) bool {
	if !s.state.CompareAndSwap(int32(StateActive), int32(to)) {
		return false
	}
	close(s.done)
	return true
}
