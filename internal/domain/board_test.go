package domain

import "testing"

func mustBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(DefaultBoardWidth, DefaultBoardHeight)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func TestNewBoardRejectsBadSize(t *testing.T) {
	if _, err := NewBoard(0, 10); err != ErrInvalidBoardSize {
		t.Fatalf("err = %v, want ErrInvalidBoardSize", err)
	}
}

func TestHasFiveInARowAxes(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
		startX int
		startY int
	}{
		{name: "horizontal", dx: 1, dy: 0, startX: 2, startY: 4},
		{name: "vertical", dx: 0, dy: 1, startX: 4, startY: 2},
		{name: "diagonal", dx: 1, dy: 1, startX: 1, startY: 1},
		{name: "anti-diagonal", dx: 1, dy: -1, startX: 1, startY: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range []int{0, 2, 4} {
				b := mustBoard(t)
				for i := 0; i < 5; i++ {
					b.SetStone(tt.startX+i*tt.dx, tt.startY+i*tt.dy, StonePlayer3, SystemPlacement())
				}
				x, y := tt.startX+at*tt.dx, tt.startY+at*tt.dy
				if !b.HasFiveInARow(x, y, StonePlayer3) {
					t.Fatalf("five not detected from offset %d", at)
				}
				b.SetStone(tt.startX+4*tt.dx, tt.startY+4*tt.dy, StoneEmpty, Placement{})
				if b.HasFiveInARow(tt.startX, tt.startY, StonePlayer3) {
					t.Fatalf("four detected as five")
				}
			}
		})
	}
}

func TestJokerAndBlocker(t *testing.T) {
	b := mustBoard(t)
	for x := 0; x < 5; x++ {
		b.SetStone(x, 0, StonePlayer1, SystemPlacement())
	}
	b.SetStone(2, 0, StoneJoker, SystemPlacement())
	if !b.HasFiveInARow(0, 0, StonePlayer1) {
		t.Fatalf("joker did not count for player one")
	}
	if !b.HasFiveInARow(4, 0, StonePlayer1) {
		t.Fatalf("run not detected from the far end")
	}
	b.SetStone(2, 0, StoneBlocker, SystemPlacement())
	if b.HasFiveInARow(0, 0, StonePlayer1) {
		t.Fatalf("blocker did not break the run")
	}
	if b.HasFiveInARow(2, 0, StonePlayer1) {
		t.Fatalf("blocker cell itself counted")
	}
}

func TestRunOfSixCountsAsFive(t *testing.T) {
	b := mustBoard(t)
	for x := 0; x < 6; x++ {
		b.SetStone(x, 3, StonePlayer2, SystemPlacement())
	}
	if !b.HasFiveInARow(3, 3, StonePlayer2) {
		t.Fatalf("six in a row not a win")
	}
	if !b.HasRun(3, 3, StonePlayer2, 6) || b.HasRun(3, 3, StonePlayer2, 7) {
		t.Fatalf("HasRun length mismatch")
	}
	if b.HasFiveInARow(3, 3, StonePlayer1) {
		t.Fatalf("other player's stones counted")
	}
}

func TestSnapshotEncoding(t *testing.T) {
	b, err := NewBoard(3, 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	b.SetStone(1, 0, StonePlayer2, SystemPlacement())
	b.SetStone(2, 1, StoneBlocker, SystemPlacement())
	snap := b.Snapshot()
	want := []byte{0xFF, 1, 0xFF, 0xFF, 0xFF, 5}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(want))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("snapshot[%d] = %#x, want %#x", i, snap[i], want[i])
		}
	}
	snap[0] = 3
	if !b.IsEmpty(0, 0) {
		t.Fatalf("snapshot aliases board storage")
	}
}

func TestSetStoneOutOfBounds(t *testing.T) {
	b := mustBoard(t)
	if b.SetStone(-1, 0, StonePlayer1, SystemPlacement()) || b.SetStone(0, 10, StonePlayer1, SystemPlacement()) {
		t.Fatalf("out of bounds write accepted")
	}
	if b.StoneAt(-1, -1) != StoneEmpty || b.IsEmpty(10, 10) {
		t.Fatalf("out of bounds reads misbehave")
	}
}

func TestPlacementMetadata(t *testing.T) {
	b := mustBoard(t)
	p := Placement{Source: PlacementPlayer, ActionNumber: 3, PlayerIndex: 1, UserID: "u2"}
	b.SetStone(4, 4, StonePlayer2, p)
	if got := b.PlacementAt(4, 4); got != p {
		t.Fatalf("placement = %+v, want %+v", got, p)
	}
	b.SetStone(4, 4, StoneEmpty, p)
	if got := b.PlacementAt(4, 4); got != (Placement{}) {
		t.Fatalf("cleared cell kept metadata %+v", got)
	}
}

func TestConnectedGroups(t *testing.T) {
	b := mustBoard(t)
	b.SetStone(0, 0, StonePlayer1, SystemPlacement())
	b.SetStone(1, 0, StonePlayer1, SystemPlacement())
	b.SetStone(1, 1, StonePlayer1, SystemPlacement())
	b.SetStone(2, 2, StonePlayer1, SystemPlacement())
	b.SetStone(5, 5, StoneBlocker, SystemPlacement())
	groups := b.ConnectedGroups()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (diagonal is not connected, blockers excluded)", len(groups))
	}
	if len(groups[0].Points) != 3 {
		t.Fatalf("first group size = %d, want 3", len(groups[0].Points))
	}
}

func TestResetAndFull(t *testing.T) {
	b, _ := NewBoard(2, 2)
	for _, p := range []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		b.SetStone(p.X, p.Y, StoneJoker, SystemPlacement())
	}
	if !b.IsFull() || len(b.EmptyCells()) != 0 {
		t.Fatalf("board should be full")
	}
	c := b.Clone()
	b.Reset()
	if b.StoneCount() != 0 {
		t.Fatalf("reset left stones")
	}
	if c.StoneCount() != 4 {
		t.Fatalf("clone shares storage")
	}
}

func TestStoneForPlayer(t *testing.T) {
	tests := []struct {
		index int
		want  Stone
	}{
		{0, StonePlayer1}, {3, StonePlayer4}, {4, StoneEmpty}, {-1, StoneEmpty},
	}
	for _, tt := range tests {
		if got := StoneForPlayer(tt.index); got != tt.want {
			t.Errorf("StoneForPlayer(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
	if StoneFromByte(0xFF) != StoneEmpty || StoneFromByte(5) != StoneBlocker || StoneFromByte(42) != StoneEmpty {
		t.Fatalf("StoneFromByte decode mismatch")
	}
}
