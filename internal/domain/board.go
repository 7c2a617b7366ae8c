package domain

import "errors"

const (
	DefaultBoardWidth  = 10
	DefaultBoardHeight = 10
	// DefaultWinLength is the run length that wins a game unless a rule raises it.
	DefaultWinLength = 5
)

// ErrInvalidBoardSize is returned when a board is constructed with non-positive dimensions.
var ErrInvalidBoardSize = errors.New("board dimensions must be positive")

// Point is a board coordinate.
type Point struct {
	X int
	Y int
}

// axes are the four line directions checked for runs; each is walked both ways.
var axes = [4]Point{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Board is a fixed-size grid of stones with per-cell placement metadata.
type Board struct {
	width  int
	height int
	cells  []Stone
	meta   []Placement
}

// NewBoard creates an empty board of the given size.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidBoardSize
	}
	b := &Board{
		width:  width,
		height: height,
		cells:  make([]Stone, width*height),
		meta:   make([]Placement, width*height),
	}
	b.Reset()
	return b, nil
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// Reset clears every cell.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = StoneEmpty
		b.meta[i] = Placement{}
	}
}

// InBounds reports whether (x,y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// IsEmpty reports whether (x,y) is on the board and unoccupied.
func (b *Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.cells[b.index(x, y)] == StoneEmpty
}

// StoneAt returns the stone at (x,y), or StoneEmpty outside the board.
func (b *Board) StoneAt(x, y int) Stone {
	if !b.InBounds(x, y) {
		return StoneEmpty
	}
	return b.cells[b.index(x, y)]
}

// PlacementAt returns the metadata of the last write to (x,y).
func (b *Board) PlacementAt(x, y int) Placement {
	if !b.InBounds(x, y) {
		return Placement{}
	}
	return b.meta[b.index(x, y)]
}

// SetStone writes a stone and its metadata. Writes outside the board are ignored.
func (b *Board) SetStone(x, y int, stone Stone, placement Placement) bool {
	if !b.InBounds(x, y) {
		return false
	}
	i := b.index(x, y)
	b.cells[i] = stone
	if stone == StoneEmpty {
		b.meta[i] = Placement{}
	} else {
		b.meta[i] = placement
	}
	return true
}

// Snapshot returns the row-major wire encoding of the board.
func (b *Board) Snapshot() []byte {
	out := make([]byte, len(b.cells))
	for i, s := range b.cells {
		out[i] = s.Byte()
	}
	return out
}

// StoneCount returns the number of occupied cells.
func (b *Board) StoneCount() int {
	n := 0
	for _, s := range b.cells {
		if s != StoneEmpty {
			n++
		}
	}
	return n
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	return b.StoneCount() == len(b.cells)
}

// EmptyCells lists every unoccupied coordinate in row-major order.
func (b *Board) EmptyCells() []Point {
	var out []Point
	for i, s := range b.cells {
		if s == StoneEmpty {
			out = append(out, b.point(i))
		}
	}
	return out
}

// CellsMatching lists every coordinate whose stone satisfies match, in row-major order.
func (b *Board) CellsMatching(match func(Stone) bool) []Point {
	var out []Point
	for i, s := range b.cells {
		if match(s) {
			out = append(out, b.point(i))
		}
	}
	return out
}

// Neighbors8 returns the in-bounds cells surrounding (x,y).
func (b *Board) Neighbors8(x, y int) []Point {
	out := make([]Point, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if b.InBounds(x+dx, y+dy) {
				out = append(out, Point{X: x + dx, Y: y + dy})
			}
		}
	}
	return out
}

// HasFiveInARow reports whether the stone at (x,y) completes a default-length run.
func (b *Board) HasFiveInARow(x, y int, stone Stone) bool {
	return b.HasRun(x, y, stone, DefaultWinLength)
}

// HasRun reports whether some axis through (x,y) holds at least n consecutive cells
// counting for stone. The cell itself must count too.
func (b *Board) HasRun(x, y int, stone Stone, n int) bool {
	return b.hasRunWhere(x, y, n, func(s Stone) bool { return s.CountsFor(stone) })
}

// HasRunMatching is HasRun with an explicit set of stones that count.
func (b *Board) HasRunMatching(x, y int, set map[Stone]bool, n int) bool {
	return b.hasRunWhere(x, y, n, func(s Stone) bool { return set[s] })
}

func (b *Board) hasRunWhere(x, y, n int, counts func(Stone) bool) bool {
	if n <= 0 || !b.InBounds(x, y) || !counts(b.StoneAt(x, y)) {
		return false
	}
	for _, axis := range axes {
		total := 1 + b.walk(x, y, axis.X, axis.Y, counts) + b.walk(x, y, -axis.X, -axis.Y, counts)
		if total >= n {
			return true
		}
	}
	return false
}

func (b *Board) walk(x, y, dx, dy int, counts func(Stone) bool) int {
	n := 0
	for cx, cy := x+dx, y+dy; b.InBounds(cx, cy) && counts(b.StoneAt(cx, cy)); cx, cy = cx+dx, cy+dy {
		n++
	}
	return n
}

// Group is a 4-way connected set of cells holding the same stone.
type Group struct {
	Stone  Stone
	Points []Point
}

// ConnectedGroups partitions every occupied, non-blocker cell into 4-way groups.
func (b *Board) ConnectedGroups() []Group {
	seen := make([]bool, len(b.cells))
	var groups []Group
	for i, s := range b.cells {
		if seen[i] || s == StoneEmpty || s == StoneBlocker {
			continue
		}
		g := Group{Stone: s}
		stack := []int{i}
		seen[i] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p := b.point(cur)
			g.Points = append(g.Points, p)
			for _, d := range [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := p.X+d.X, p.Y+d.Y
				if !b.InBounds(nx, ny) {
					continue
				}
				ni := b.index(nx, ny)
				if !seen[ni] && b.cells[ni] == s {
					seen[ni] = true
					stack = append(stack, ni)
				}
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{
		width:  b.width,
		height: b.height,
		cells:  append([]Stone(nil), b.cells...),
		meta:   append([]Placement(nil), b.meta...),
	}
	return c
}

func (b *Board) index(x, y int) int {
	return y*b.width + x
}

func (b *Board) point(i int) Point {
	return Point{X: i % b.width, Y: i / b.width}
}
