package rules

import "omok/internal/domain"

var orthogonal = [4]domain.Point{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// reversiRule flips every line of opponent or joker stones closed off by the placed stone.
func reversiRule() Descriptor {
	return Descriptor{
		ID:         Reversi,
		LimitScore: 700,
		Priority:   700,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPostPlacement || rt.Move == nil || rt.Board == nil {
				return
			}
			b := rt.Board
			own := b.StoneAt(rt.Move.X, rt.Move.Y)
			if !own.IsPlayer() {
				return
			}
			placement := domain.RulePlacement(rt.Turn.ActionNumber, own.PlayerIndex(), rt.Move.UserID)
			flipped := false
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					var line []domain.Point
					x, y := rt.Move.X+dx, rt.Move.Y+dy
					closed := false
					for b.InBounds(x, y) {
						s := b.StoneAt(x, y)
						if s == own {
							closed = true
							break
						}
						if s == domain.StoneEmpty || s == domain.StoneBlocker {
							break
						}
						line = append(line, domain.Point{X: x, Y: y})
						x, y = x+dx, y+dy
					}
					if !closed {
						continue
					}
					for _, p := range line {
						b.SetStone(p.X, p.Y, own, placement)
						flipped = true
					}
				}
			}
			if flipped {
				rt.QueueBoardSnapshot()
			}
		},
	}
}

// goCaptureRule removes every group left without an orthogonal liberty.
func goCaptureRule() Descriptor {
	return Descriptor{
		ID:         GoCapture,
		LimitScore: 1900,
		Priority:   1900,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPostPlacement || rt.Board == nil {
				return
			}
			b := rt.Board
			var captured []domain.Point
			for _, g := range b.ConnectedGroups() {
				if !hasLiberty(b, g) {
					captured = append(captured, g.Points...)
				}
			}
			for _, p := range captured {
				b.SetStone(p.X, p.Y, domain.StoneEmpty, domain.Placement{})
			}
			if len(captured) > 0 {
				rt.debugf("RuleEngine: go capture removed %d stones", len(captured))
				rt.QueueBoardSnapshot()
			}
		},
	}
}

func hasLiberty(b *domain.Board, g domain.Group) bool {
	for _, p := range g.Points {
		for _, d := range orthogonal {
			if b.IsEmpty(p.X+d.X, p.Y+d.Y) {
				return true
			}
		}
	}
	return false
}

// blockerBanRule clears every blocker after each placement.
func blockerBanRule() Descriptor {
	return Descriptor{
		ID:         BlockerBan,
		LimitScore: 1200,
		Priority:   1200,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPostPlacement || rt.Board == nil {
				return
			}
			blockers := rt.Board.CellsMatching(func(s domain.Stone) bool { return s == domain.StoneBlocker })
			for _, p := range blockers {
				rt.Board.SetStone(p.X, p.Y, domain.StoneEmpty, rt.placement())
			}
			if len(blockers) > 0 {
				rt.QueueBoardSnapshot()
			}
		},
	}
}

const evolutionAge = 10

var evolutionAges = Key[Ages]("rule:evolution:ages")

// evolutionRule ages player stones once per turn and promotes ten-turn survivors to jokers.
func evolutionRule() Descriptor {
	return Descriptor{
		ID:         Evolution,
		LimitScore: 500,
		Priority:   500,
		Invoke: func(rt *Runtime) {
			switch rt.Trigger {
			case TriggerPostPlacement:
			case TriggerTurnAdvance:
				// Turns that ended with a placement were aged during POST_PLACEMENT.
				if rt.Move != nil {
					return
				}
			default:
				return
			}
			if rt.Board == nil {
				return
			}
			ages, ok := Get(rt.Data, evolutionAges)
			if !ok {
				ages = make(Ages)
				Put(rt.Data, evolutionAges, ages)
			}
			changed := false
			for y := 0; y < rt.Board.Height(); y++ {
				for x := 0; x < rt.Board.Width(); x++ {
					p := domain.Point{X: x, Y: y}
					if !rt.Board.StoneAt(x, y).IsPlayer() {
						delete(ages, p)
						continue
					}
					ages[p] = min(ages[p]+1, evolutionAge)
					if ages[p] >= evolutionAge {
						rt.Board.SetStone(x, y, domain.StoneJoker, domain.SystemPlacement())
						delete(ages, p)
						changed = true
					}
				}
			}
			if changed {
				rt.QueueBoardSnapshot()
			}
		},
	}
}

const (
	infectionLifetime    = 3
	infectionBaseChance  = 0.2
	infectionSpreadRatio = 0.45
)

var infectedCells = Key[Cells]("rule:infection:active")

// infectionRule spreads an infection over player stones each round; infected stones
// decay into blockers after three rounds.
func infectionRule() Descriptor {
	return Descriptor{
		ID:         Infection,
		LimitScore: 1100,
		Priority:   1100,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnRoundCompleted || rt.Board == nil {
				return
			}
			infected, ok := Get(rt.Data, infectedCells)
			if !ok {
				infected = make(Cells)
				Put(rt.Data, infectedCells, infected)
			}
			b := rt.Board
			mutated := false
			for p, remaining := range infected {
				if remaining-1 > 0 {
					infected[p] = remaining - 1
					continue
				}
				delete(infected, p)
				b.SetStone(p.X, p.Y, domain.StoneBlocker, rt.placement())
				mutated = true
			}

			healthy := b.CellsMatching(domain.Stone.IsPlayer)
			healthy = withoutCells(healthy, infected)
			if len(healthy) == 0 {
				if mutated {
					rt.QueueBoardSnapshot()
				}
				return
			}
			if rt.float() < infectionBaseChance {
				infected[healthy[rt.intn(len(healthy))]] = infectionLifetime
			}
			for _, blocker := range b.CellsMatching(func(s domain.Stone) bool { return s == domain.StoneBlocker }) {
				for _, d := range orthogonal {
					p := domain.Point{X: blocker.X + d.X, Y: blocker.Y + d.Y}
					if !b.StoneAt(p.X, p.Y).IsPlayer() {
						continue
					}
					if _, already := infected[p]; already {
						continue
					}
					if rt.float() < infectionSpreadRatio {
						infected[p] = infectionLifetime
					}
				}
			}
			if mutated {
				rt.QueueBoardSnapshot()
			}
		},
	}
}

func withoutCells(points []domain.Point, exclude Cells) []domain.Point {
	out := points[:0]
	for _, p := range points {
		if _, ok := exclude[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

var stoneConversionLastRound = Key[int]("rule:stoneConversion:lastRound")

// stoneConversionRule turns one random stone of every player into a blocker every fifth round.
func stoneConversionRule() Descriptor {
	return Descriptor{
		ID:         StoneConversion,
		LimitScore: 0,
		Priority:   10,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnRoundCompleted {
				return
			}
			round := rt.Turn.RoundNumber
			if round <= 0 || round%5 != 0 {
				return
			}
			if last, ok := Get(rt.Data, stoneConversionLastRound); ok && last == round {
				return
			}
			if blockOnePerPlayer(rt) {
				rt.QueueBoardSnapshot()
			}
			Put(rt.Data, stoneConversionLastRound, round)
		},
	}
}

var fiveTurnBlockerLastTurn = Key[int]("rule:fiveTurnBlocker:lastTurn")

// fiveTurnBlockerRule turns one random stone of every player into a blocker every five turns.
func fiveTurnBlockerRule() Descriptor {
	return Descriptor{
		ID:         FiveTurnBlocker,
		LimitScore: 0,
		Priority:   20,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnAdvance {
				return
			}
			completed := max(0, rt.Turn.ActionNumber-1)
			if completed == 0 || completed%5 != 0 {
				return
			}
			if last, ok := Get(rt.Data, fiveTurnBlockerLastTurn); ok && last == completed {
				return
			}
			if blockOnePerPlayer(rt) {
				rt.QueueBoardSnapshot()
			}
			Put(rt.Data, fiveTurnBlockerLastTurn, completed)
		},
	}
}

func blockOnePerPlayer(rt *Runtime) bool {
	if rt.Board == nil || rt.Participants == nil {
		return false
	}
	changed := false
	for i := range rt.Participants.UserIDs() {
		stone := domain.StoneForPlayer(i)
		if stone == domain.StoneEmpty {
			continue
		}
		cells := rt.Board.CellsMatching(func(s domain.Stone) bool { return s == stone })
		if len(cells) == 0 {
			continue
		}
		p := cells[rt.intn(len(cells))]
		rt.Board.SetStone(p.X, p.Y, domain.StoneBlocker, rt.placement())
		changed = true
	}
	return changed
}

var jokerSummonLastRound = Key[int]("rule:jokerSummon:lastRound")

// jokerSummonRule drops a joker on a random empty cell every second round.
func jokerSummonRule() Descriptor {
	return Descriptor{
		ID:         JokerSummon,
		LimitScore: 0,
		Priority:   5,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnRoundCompleted || rt.Board == nil {
				return
			}
			round := rt.Turn.RoundNumber
			if round <= 0 || round%2 != 0 {
				return
			}
			if last, ok := Get(rt.Data, jokerSummonLastRound); ok && last == round {
				return
			}
			Put(rt.Data, jokerSummonLastRound, round)
			empty := rt.Board.EmptyCells()
			if len(empty) == 0 {
				return
			}
			p := empty[rt.intn(len(empty))]
			rt.Board.SetStone(p.X, p.Y, domain.StoneJoker, rt.placement())
			rt.QueueBoardSnapshot()
		},
	}
}

var randomMoveLastRound = Key[int]("rule:randomMove:lastRound")

// randomMoveRule nudges up to one stone per participant into an adjacent empty cell each round.
func randomMoveRule() Descriptor {
	return Descriptor{
		ID:         RandomMove,
		LimitScore: 1600,
		Priority:   1600,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnRoundCompleted || rt.Board == nil || rt.Participants == nil {
				return
			}
			round := rt.Turn.RoundNumber
			if last, ok := Get(rt.Data, randomMoveLastRound); ok && last == round {
				return
			}
			Put(rt.Data, randomMoveLastRound, round)
			b := rt.Board
			stones := b.CellsMatching(domain.Stone.IsPlayer)
			rt.shuffle(len(stones), func(i, j int) { stones[i], stones[j] = stones[j], stones[i] })
			moved := false
			for _, p := range stones[:min(rt.Participants.Count(), len(stones))] {
				stone := b.StoneAt(p.X, p.Y)
				var targets []domain.Point
				for _, d := range orthogonal {
					if b.IsEmpty(p.X+d.X, p.Y+d.Y) {
						targets = append(targets, domain.Point{X: p.X + d.X, Y: p.Y + d.Y})
					}
				}
				if !stone.IsPlayer() || len(targets) == 0 {
					continue
				}
				to := targets[rt.intn(len(targets))]
				b.SetStone(p.X, p.Y, domain.StoneEmpty, domain.Placement{})
				b.SetStone(to.X, to.Y, stone, rt.placement())
				moved = true
			}
			if moved {
				rt.QueueBoardSnapshot()
			}
		},
	}
}

var lowDensityLastTurn = Key[int]("rule:lowDensityPurge:lastTurn")

// lowDensityPurgeRule removes the stones with the fewest occupied neighbours every fifth turn.
func lowDensityPurgeRule() Descriptor {
	return Descriptor{
		ID:         LowDensityPurge,
		LimitScore: 1700,
		Priority:   1700,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnAdvance || rt.Board == nil {
				return
			}
			turn := rt.Turn.ActionNumber
			if turn <= 0 || turn%5 != 0 {
				return
			}
			if last, ok := Get(rt.Data, lowDensityLastTurn); ok && last == turn {
				return
			}
			Put(rt.Data, lowDensityLastTurn, turn)
			b := rt.Board
			occupied := func(s domain.Stone) bool { return s != domain.StoneEmpty && s != domain.StoneBlocker }
			minCount := -1
			counts := make(map[domain.Point]int)
			for _, p := range b.CellsMatching(occupied) {
				n := 0
				for _, q := range b.Neighbors8(p.X, p.Y) {
					if occupied(b.StoneAt(q.X, q.Y)) {
						n++
					}
				}
				counts[p] = n
				if minCount < 0 || n < minCount {
					minCount = n
				}
			}
			if minCount < 0 {
				return
			}
			for p, n := range counts {
				if n == minCount {
					b.SetStone(p.X, p.Y, domain.StoneEmpty, domain.Placement{})
				}
			}
			rt.QueueBoardSnapshot()
		},
	}
}

var sequentialLastRound = Key[int]("rule:sequentialConversion:lastRound")

// sequentialConversionRule hands every player's stones to the next player in order at
// the start of each new round.
func sequentialConversionRule() Descriptor {
	return Descriptor{
		ID:         SequentialConversion,
		LimitScore: 200,
		Priority:   200,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerTurnStart || rt.Board == nil || rt.Participants == nil {
				return
			}
			round := rt.Turn.RoundNumber
			if round <= 1 || rt.Turn.PositionInRound != 1 {
				return
			}
			if last, ok := Get(rt.Data, sequentialLastRound); ok && last == round {
				return
			}
			Put(rt.Data, sequentialLastRound, round)
			ids := rt.Participants.UserIDs()
			players := min(len(ids), domain.MaxPlayerStones)
			if players < 2 {
				return
			}
			changed := false
			for _, p := range rt.Board.CellsMatching(domain.Stone.IsPlayer) {
				idx := rt.Board.StoneAt(p.X, p.Y).PlayerIndex()
				if idx >= players {
					continue
				}
				next := (idx + 1) % players
				placement := domain.RulePlacement(rt.Turn.ActionNumber, next, ids[next])
				rt.Board.SetStone(p.X, p.Y, domain.StoneForPlayer(next), placement)
				changed = true
			}
			if changed {
				rt.QueueBoardSnapshot()
			}
		},
	}
}
