package scheduler

import (
	"testing"
	"time"
)

func TestTurnTimeoutsFireAndValidate(t *testing.T) {
	s := NewTurnTimeouts(nil)
	fired := make(chan struct{}, 1)

	s.Schedule("s1", 3, time.Now().Add(10*time.Millisecond), func() { fired <- struct{}{} })

	if !s.Validate("s1", 3) {
		t.Fatal("armed timer did not validate")
	}
	if s.Validate("s1", 2) {
		t.Fatal("timer validated for the wrong turn")
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	if !s.Validate("s1", 3) {
		t.Fatal("entry cleared before the handler confirmed it")
	}
	s.ClearIfMatches("s1", 2)
	if s.Pending() != 1 {
		t.Fatal("ClearIfMatches removed a timer for another turn")
	}
	s.ClearIfMatches("s1", 3)
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}
}

func TestTurnTimeoutsReplaceAndCancel(t *testing.T) {
	s := NewTurnTimeouts(nil)
	fired := make(chan int, 2)
	far := time.Now().Add(time.Hour)

	s.Schedule("s1", 1, far, func() { fired <- 1 })
	s.Schedule("s1", 2, time.Now().Add(5*time.Millisecond), func() { fired <- 2 })

	select {
	case turn := <-fired:
		if turn != 2 {
			t.Fatalf("fired turn %d, want 2", turn)
		}
	case <-time.After(time.Second):
		t.Fatal("replacement timer did not fire")
	}

	s.Schedule("s2", 1, far, func() { fired <- 99 })
	s.Cancel("s2")
	if s.Validate("s2", 1) {
		t.Fatal("cancelled timer still validates")
	}
}

func TestTurnTimeoutsPastDeadlineFiresImmediately(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewTurnTimeouts(func() time.Time { return now })
	fired := make(chan struct{}, 1)

	s.Schedule("s1", 1, now.Add(-time.Minute), func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("overdue timer did not fire")
	}
}

func TestDecisionTimeoutsClearOnFire(t *testing.T) {
	s := NewDecisionTimeouts(nil)
	fired := make(chan struct{}, 1)

	s.Schedule("s1", time.Now().Add(5*time.Millisecond), func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("decision timer did not fire")
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after firing, want 0", s.Pending())
	}
}

func TestDecisionTimeoutsCancel(t *testing.T) {
	s := NewDecisionTimeouts(nil)
	fired := make(chan struct{}, 1)

	s.Schedule("s1", time.Now().Add(20*time.Millisecond), func() { fired <- struct{}{} })
	s.Cancel("s1")

	select {
	case <-fired:
		t.Fatal("cancelled decision timer fired")
	case <-time.After(60 * time.Millisecond):
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}
}
