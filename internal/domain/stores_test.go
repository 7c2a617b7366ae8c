package domain

import (
	"testing"
	"time"
)

func TestParticipantsReady(t *testing.T) {
	p := NewParticipants([]string{"a", "b"})
	if p.AllReady() {
		t.Fatalf("ready before anyone marked")
	}
	if !p.MarkReady("a") || p.MarkReady("a") {
		t.Fatalf("MarkReady should report only the first transition")
	}
	if p.MarkReady("zed") {
		t.Fatalf("unknown user marked ready")
	}
	p.MarkReady("b")
	if !p.AllReady() || len(p.ReadyUserIDs()) != 2 {
		t.Fatalf("all ready = %v, ready = %v", p.AllReady(), p.ReadyUserIDs())
	}
}

func TestParticipantsDisconnected(t *testing.T) {
	p := NewParticipants([]string{"a", "b", "c"})
	p.SetDisconnected("b", true)
	p.SetDisconnected("ghost", true)
	if p.ConnectedCount() != 2 || !p.IsDisconnected("b") || p.IsDisconnected("ghost") {
		t.Fatalf("connected = %d", p.ConnectedCount())
	}
	d := p.Disconnected()
	d["a"] = true
	if p.IsDisconnected("a") {
		t.Fatalf("Disconnected returned internal map")
	}
	p.SetDisconnected("b", false)
	if len(p.DisconnectedUserIDs()) != 0 {
		t.Fatalf("reconnect not recorded")
	}
	if p.IndexOf("c") != 2 || p.IndexOf("x") != -1 {
		t.Fatalf("IndexOf mismatch")
	}
}

func TestOutcomesAreMonotonic(t *testing.T) {
	o := NewOutcomes([]string{"a", "b"})
	tests := []struct {
		name   string
		user   string
		result Outcome
		want   bool
	}{
		{name: "decide a", user: "a", result: OutcomeWin, want: true},
		{name: "overwrite a", user: "a", result: OutcomeLoss, want: false},
		{name: "pending refused", user: "b", result: OutcomePending, want: false},
		{name: "unknown user", user: "z", result: OutcomeLoss, want: false},
		{name: "decide b", user: "b", result: OutcomeDraw, want: true},
	}
	for _, tt := range tests {
		if got := o.Set(tt.user, tt.result); got != tt.want {
			t.Errorf("%s: Set = %v, want %v", tt.name, got, tt.want)
		}
	}
	if o.For("a") != OutcomeWin || !o.IsResolved() || o.DecidedCount() != 2 {
		t.Fatalf("outcomes = %v", o.Snapshot())
	}
	o.Reset()
	if o.For("a") != OutcomePending || o.IsResolved() {
		t.Fatalf("reset did not clear outcomes")
	}
}

func TestPostGameDecisions(t *testing.T) {
	pg := NewPostGame([]string{"a", "b", "c"})
	deadline := epoch.Add(DefaultDecisionWindow)
	pg.Open(deadline)
	if !pg.Record("a", DecisionRematch) || pg.Record("a", DecisionLeave) {
		t.Fatalf("decision must be recorded once")
	}
	if pg.Record("x", DecisionLeave) {
		t.Fatalf("unknown user recorded")
	}
	pg.Record("b", DecisionRematch)
	if pg.AllDecided() {
		t.Fatalf("c has not decided")
	}
	if got := pg.Undecided(); len(got) != 1 || got[0] != "c" {
		t.Fatalf("undecided = %v", got)
	}
	if got := pg.RematchUserIDs(); len(got) != 2 {
		t.Fatalf("rematch = %v", got)
	}
	if pg.WindowClosed(deadline) || !pg.WindowClosed(deadline.Add(time.Millisecond)) {
		t.Fatalf("window boundary wrong")
	}
	if d, ok := pg.For("a"); !ok || d != DecisionRematch {
		t.Fatalf("For(a) = %s,%v", d, ok)
	}
}
