// Package scheduler arms the per-session timers that drive turn and post-game timeouts.
package scheduler

import (
	"sync"
	"time"
)

type turnTimer struct {
	turn  int
	timer *time.Timer
}

// TurnTimeouts keeps at most one armed turn timer per session.
type TurnTimeouts struct {
	mu     sync.Mutex
	timers map[string]*turnTimer
	now    func() time.Time
}

// NewTurnTimeouts creates an empty scheduler. A nil clock selects time.Now.
func NewTurnTimeouts(now func() time.Time) *TurnTimeouts {
	if now == nil {
		now = time.Now
	}
	return &TurnTimeouts{timers: make(map[string]*turnTimer), now: now}
}

// Schedule arms a timer for turnNumber that runs onTimeout at deadline, replacing any
// timer already armed for the session. The entry stays armed after firing until the
// handler calls ClearIfMatches.
func (s *TurnTimeouts) Schedule(sessionID string, turnNumber int, deadline time.Time, onTimeout func()) {
	delay := deadline.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.timers[sessionID]; ok {
		prev.timer.Stop()
	}
	entry := &turnTimer{turn: turnNumber}
	entry.timer = time.AfterFunc(delay, onTimeout)
	s.timers[sessionID] = entry
}

// Cancel stops the session's timer if one is armed.
func (s *TurnTimeouts) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.timers[sessionID]; ok {
		prev.timer.Stop()
		delete(s.timers, sessionID)
	}
}

// Validate reports whether the armed timer belongs to expected.
func (s *TurnTimeouts) Validate(sessionID string, expected int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.timers[sessionID]
	return ok && entry.turn == expected
}

// ClearIfMatches forgets the session's timer if it is still armed for turnNumber.
func (s *TurnTimeouts) ClearIfMatches(sessionID string, turnNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.timers[sessionID]; ok && entry.turn == turnNumber {
		delete(s.timers, sessionID)
	}
}

// Pending returns the number of armed timers.
func (s *TurnTimeouts) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
