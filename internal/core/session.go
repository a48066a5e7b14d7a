package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// generation identifies one import within its session. Values come from a
// single counter so they never repeat, even across sessions.
type generation uint64

var generationSeq atomic.Uint64

type sessionState struct {
	current generation
	cancel  context.CancelFunc
}

// sessions tracks the newest import per session. Starting an import cancels
// the read of the one it supersedes; a superseded import is stale.
type sessions struct {
	mu    sync.Mutex
	state map[string]*sessionState
}

func newSessions() *sessions {
	return &sessions{state: make(map[string]*sessionState)}
}

// begin registers a new import for session and returns its generation and a
// context that is cancelled if a newer import starts. An empty session is
// never superseded.
func (s *sessions) begin(ctx context.Context, session string) (context.Context, generation, context.CancelFunc) {
	gen := generation(generationSeq.Add(1))
	ctx, cancel := context.WithCancel(ctx)
	if session == "" {
		return ctx, gen, cancel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[session]
	if !ok {
		st = &sessionState{}
		s.state[session] = st
	}
	if st.cancel != nil {
		st.cancel()
	}
	st.current = gen
	st.cancel = cancel

	return ctx, gen, cancel
}

// isCurrent reports whether gen is still the newest import in session.
func (s *sessions) isCurrent(session string, gen generation) bool {
	if session == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[session]
	return ok && st.current == gen
}

// end forgets session if gen is still its newest import.
func (s *sessions) end(session string, gen generation) {
	if session == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.state[session]; ok && st.current == gen {
		delete(s.state, session)
	}
}

// active returns the number of sessions with an import in flight.
func (s *sessions) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state)
}
