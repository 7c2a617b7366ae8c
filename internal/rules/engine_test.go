package rules

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"omok/internal/domain"
)

func newTestRuntime(t *testing.T, ids ...string) *Runtime {
	t.Helper()
	board, err := domain.NewBoard(10, 10)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	now := time.Unix(1_700_000_000, 0)
	turns := domain.NewTurnState(15 * time.Second)
	snap, err := turns.Start(ids, now)
	if err != nil {
		t.Fatalf("start turns: %v", err)
	}
	return &Runtime{
		SessionID:    "s1",
		Board:        board,
		Turns:        turns,
		Participants: domain.NewParticipants(ids),
		Outcomes:     domain.NewOutcomes(ids),
		Data:         NewBlackboard(),
		Turn:         snap,
		Rand:         rand.New(rand.NewSource(1)),
		Now:          now,
	}
}

func TestFireRunsInPriorityOrder(t *testing.T) {
	var calls []ID
	record := func(id ID) func(*Runtime) {
		return func(rt *Runtime) { calls = append(calls, id) }
	}
	set := NewSet([]Descriptor{
		{ID: "C", Priority: 30, Invoke: record("C")},
		{ID: "A", Priority: 10, Invoke: record("A")},
		{ID: "B", Priority: 10, Invoke: record("B")},
	})
	rt := newTestRuntime(t, "u1", "u2")

	NewEngine().Fire(set, TriggerTurnStart, rt)

	if want := []ID{"A", "B", "C"}; !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	if rt.Trigger != TriggerTurnStart {
		t.Fatalf("trigger = %s, want %s", rt.Trigger, TriggerTurnStart)
	}
	if rt.Data != set.Data() {
		t.Fatalf("runtime not bound to the session blackboard")
	}
}

func TestFireInvokesCapabilitiesAtTheirTriggers(t *testing.T) {
	var setup, timing, reorder int
	set := NewSet([]Descriptor{{
		ID: "X",
		Capabilities: Capabilities{
			SetupBoard:   func(*Runtime) bool { setup++; return true },
			AdjustTiming: func(*Runtime) bool { timing++; return false },
			ReorderTurns: func(*Runtime) bool { reorder++; return true },
		},
	}})
	engine := NewEngine()

	rt := newTestRuntime(t, "u1", "u2")
	engine.Fire(set, TriggerGameStart, rt)
	if setup != 1 || timing != 1 || reorder != 1 {
		t.Fatalf("game start hooks = %d/%d/%d, want 1/1/1", setup, timing, reorder)
	}
	if fx := rt.Effects(); !fx.BoardChanged || !fx.OrderChanged || fx.TimingChanged {
		t.Fatalf("effects = %+v", fx)
	}

	engine.Fire(set, TriggerTurnAdvance, newTestRuntime(t, "u1", "u2"))
	if timing != 2 || reorder != 1 || setup != 1 {
		t.Fatalf("turn advance hooks = %d/%d/%d", setup, timing, reorder)
	}

	engine.Fire(set, TriggerTurnRoundCompleted, newTestRuntime(t, "u1", "u2"))
	if reorder != 2 || timing != 2 {
		t.Fatalf("round completed hooks = %d/%d", timing, reorder)
	}

	engine.Fire(set, TriggerPostPlacement, newTestRuntime(t, "u1", "u2"))
	if setup != 1 || timing != 2 || reorder != 2 {
		t.Fatalf("post placement ran capability hooks")
	}
}

func TestValidateMoveReturnsFirstRejection(t *testing.T) {
	var later bool
	set := NewSet([]Descriptor{
		{ID: "A", Priority: 1, Capabilities: Capabilities{ValidateMove: func(*Runtime) Status { return StatusOK }}},
		{ID: "B", Priority: 2, Capabilities: Capabilities{ValidateMove: func(*Runtime) Status { return StatusRestrictedZone }}},
		{ID: "C", Priority: 3, Capabilities: Capabilities{ValidateMove: func(*Runtime) Status { later = true; return "OTHER" }}},
	})
	rt := newTestRuntime(t, "u1", "u2")
	rt.Move = &Move{UserID: "u1", X: 1, Y: 1}

	if got := NewEngine().ValidateMove(set, rt); got != StatusRestrictedZone {
		t.Fatalf("status = %q, want %q", got, StatusRestrictedZone)
	}
	if later {
		t.Fatalf("validation continued past the first rejection")
	}
}

func TestResolveOutcomeThreadsCandidate(t *testing.T) {
	set := NewSet([]Descriptor{
		{ID: "first", Priority: 1, Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, c *OutcomeResolution) *OutcomeResolution {
				return NewResolution(false).Assign("u1", domain.OutcomeWin)
			},
		}},
		{ID: "second", Priority: 2, Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, c *OutcomeResolution) *OutcomeResolution {
				if c == nil || c.Assignments["u1"] != domain.OutcomeWin {
					t.Fatalf("second hook did not see the first candidate: %+v", c)
				}
				c.FinalizeNow = true
				return c
			},
		}},
	})
	got := NewEngine().ResolveOutcome(set, newTestRuntime(t, "u1", "u2"), nil)
	if got == nil || !got.FinalizeNow || got.Assignments["u1"] != domain.OutcomeWin {
		t.Fatalf("resolution = %+v", got)
	}
}

func TestTransformSnapshotLeavesInputIntact(t *testing.T) {
	set := NewSet([]Descriptor{blackViewRule()})
	rt := newTestRuntime(t, "u1", "u2")
	engine := NewEngine()
	engine.Fire(set, TriggerGameStart, rt)

	in := []byte{domain.StonePlayer2.Byte(), domain.StoneEmpty.Byte(), domain.StoneJoker.Byte(), domain.StonePlayer4.Byte()}
	orig := append([]byte(nil), in...)
	out := engine.TransformSnapshot(set, in)

	want := []byte{domain.StonePlayer1.Byte(), domain.StoneEmpty.Byte(), domain.StoneJoker.Byte(), domain.StonePlayer1.Byte()}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("masked = %v, want %v", out, want)
	}
	if !reflect.DeepEqual(in, orig) {
		t.Fatalf("input snapshot was modified")
	}
}

func TestTransformSnapshotInactiveIsIdentity(t *testing.T) {
	set := NewSet([]Descriptor{blackViewRule()})
	in := []byte{domain.StonePlayer2.Byte()}
	if out := NewEngine().TransformSnapshot(set, in); !reflect.DeepEqual(out, in) {
		t.Fatalf("inactive transform changed snapshot: %v", out)
	}
}

func TestBlackboardTypedSlots(t *testing.T) {
	b := NewBlackboard()
	counter := Key[int]("test:counter")
	if _, ok := Get(b, counter); ok {
		t.Fatalf("unset slot reported present")
	}
	Put(b, counter, 3)
	if v, ok := Get(b, counter); !ok || v != 3 {
		t.Fatalf("counter = %d,%v", v, ok)
	}
	if got := WinLength(b); got != domain.DefaultWinLength {
		t.Fatalf("default win length = %d", got)
	}
	Put(b, WinLengthKey, 6)
	if got := WinLength(b); got != 6 {
		t.Fatalf("win length = %d, want 6", got)
	}
	Delete(b, counter)
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("reset left %d slots", b.Len())
	}
}
