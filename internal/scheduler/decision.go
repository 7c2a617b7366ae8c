package scheduler

import (
	"sync"
	"time"
)

// DecisionTimeouts keeps at most one post-game decision timer per session.
type DecisionTimeouts struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	now    func() time.Time
}

// NewDecisionTimeouts creates an empty scheduler. A nil clock selects time.Now.
func NewDecisionTimeouts(now func() time.Time) *DecisionTimeouts {
	if now == nil {
		now = time.Now
	}
	return &DecisionTimeouts{timers: make(map[string]*time.Timer), now: now}
}

// Schedule runs task at deadline, replacing any timer already armed for the session.
func (s *DecisionTimeouts) Schedule(sessionID string, deadline time.Time, task func()) {
	delay := max(deadline.Sub(s.now()), 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.timers[sessionID]; ok {
		prev.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[sessionID] == t {
			delete(s.timers, sessionID)
		}
		s.mu.Unlock()
		task()
	})
	s.timers[sessionID] = t
}

// Cancel stops the session's timer if one is armed.
func (s *DecisionTimeouts) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// Pending returns the number of armed timers.
func (s *DecisionTimeouts) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
