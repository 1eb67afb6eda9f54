package editor

import (
	"context"
	"sync"
)

// Session serializes commands against one State and republishes after every
// successful command.
type Session struct {
	mu        sync.Mutex
	state     State
	publisher *Publisher
}

func NewSession(state State, publisher *Publisher) *Session {
	return &Session{state: state, publisher: publisher}
}

// Do applies cmd. A failed command leaves the state untouched and publishes nothing.
func (s *Session) Do(ctx context.Context, cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := cmd.Apply(s.state)
	if err != nil {
		return s.state.clone(), err
	}
	s.state = next
	if s.publisher != nil {
		s.publisher.Publish(ctx, next.Menu)
	}
	return next.clone(), nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Latest returns the newest applied publish result.
func (s *Session) Latest() (Result, bool) {
	if s.publisher == nil {
		return Result{}, false
	}
	return s.publisher.Latest()
}

// Wait blocks until outstanding publishes settle.
func (s *Session) Wait() {
	if s.publisher != nil {
		s.publisher.Wait()
	}
}
