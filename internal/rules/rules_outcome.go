package rules

import "omok/internal/domain"

var (
	sixInRowLastTurn   = Key[int]("rule:sixInRow:lastTurn")
	tenChainLastTurn   = Key[int]("rule:tenChain:lastTurn")
	luckySevenLastTurn = Key[int]("rule:luckySeven:lastTurn")
)

const (
	sixInRowLength = 6
	tenChainSize   = 10
)

// sixInRowRule declares a winner for any player holding a six-stone line anywhere on
// the board, including lines completed by other rules' side effects.
func sixInRowRule() Descriptor {
	return Descriptor{
		ID:         SixInRow,
		LimitScore: 400,
		Priority:   400,
		Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, candidate *OutcomeResolution) *OutcomeResolution {
				if rt.Board == nil || rt.Participants == nil {
					return candidate
				}
				turn := rt.Turn.ActionNumber
				if last, ok := Get(rt.Data, sixInRowLastTurn); ok && last == turn {
					return candidate
				}
				var winners []string
				for i, id := range rt.Participants.UserIDs() {
					if stone := domain.StoneForPlayer(i); stone != domain.StoneEmpty && hasRunAnywhere(rt.Board, stone, sixInRowLength) {
						winners = append(winners, id)
					}
				}
				if len(winners) == 0 {
					return candidate
				}
				Put(rt.Data, sixInRowLastTurn, turn)
				if candidate == nil {
					candidate = NewResolution(true)
				}
				for _, id := range winners {
					candidate.Assign(id, domain.OutcomeWin)
				}
				candidate.FinalizeNow = true
				return candidate
			},
		},
	}
}

// tenChainRule eliminates any player whose stones form a connected group of ten;
// everyone else wins.
func tenChainRule() Descriptor {
	return Descriptor{
		ID:         TenChain,
		LimitScore: 800,
		Priority:   800,
		Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, candidate *OutcomeResolution) *OutcomeResolution {
				if rt.Board == nil || rt.Participants == nil {
					return candidate
				}
				turn := rt.Turn.ActionNumber
				if last, ok := Get(rt.Data, tenChainLastTurn); ok && last == turn {
					return candidate
				}
				large := make(map[domain.Stone]bool)
				for _, g := range rt.Board.ConnectedGroups() {
					if len(g.Points) >= tenChainSize {
						large[g.Stone] = true
					}
				}
				ids := rt.Participants.UserIDs()
				eliminated := make(map[string]bool)
				for i, id := range ids {
					if stone := domain.StoneForPlayer(i); stone != domain.StoneEmpty && large[stone] {
						eliminated[id] = true
					}
				}
				if len(eliminated) == 0 {
					return candidate
				}
				Put(rt.Data, tenChainLastTurn, turn)
				rt.debugf("RuleEngine: ten chain eliminated %d players on turn %d", len(eliminated), turn)
				res := NewResolution(true)
				for _, id := range ids {
					if eliminated[id] {
						res.Assign(id, domain.OutcomeLoss)
					} else {
						res.Assign(id, domain.OutcomeWin)
					}
				}
				return res
			},
		},
	}
}

// luckySevenRule turns every win decided on a turn divisible by seven into a loss.
func luckySevenRule() Descriptor {
	return Descriptor{
		ID:         LuckySeven,
		LimitScore: 2100,
		Priority:   2100,
		Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, candidate *OutcomeResolution) *OutcomeResolution {
				turn := rt.Turn.ActionNumber
				if candidate.Empty() || turn <= 0 || turn%7 != 0 {
					return candidate
				}
				if last, ok := Get(rt.Data, luckySevenLastTurn); ok && last == turn {
					return candidate
				}
				winners := candidate.Winners()
				if len(winners) == 0 {
					return candidate
				}
				Put(rt.Data, luckySevenLastTurn, turn)
				for _, id := range winners {
					candidate.Assign(id, domain.OutcomeLoss)
				}
				candidate.FinalizeNow = true
				return candidate
			},
		},
	}
}

var specialStones = map[domain.Stone]bool{domain.StoneJoker: true, domain.StoneBlocker: true}

// newPlayerRule makes everyone lose when jokers and blockers line up on their own.
func newPlayerRule() Descriptor {
	return Descriptor{
		ID:         NewPlayer,
		LimitScore: 2200,
		Priority:   2200,
		Capabilities: Capabilities{
			ResolveOutcome: func(rt *Runtime, candidate *OutcomeResolution) *OutcomeResolution {
				if rt.Board == nil || rt.Participants == nil {
					return candidate
				}
				length := WinLength(rt.Data)
				found := false
				for _, p := range rt.Board.CellsMatching(func(s domain.Stone) bool { return specialStones[s] }) {
					if rt.Board.HasRunMatching(p.X, p.Y, specialStones, length) {
						found = true
						break
					}
				}
				if !found {
					return candidate
				}
				res := NewResolution(true)
				for _, id := range rt.Participants.UserIDs() {
					res.Assign(id, domain.OutcomeLoss)
				}
				return res
			},
		},
	}
}

func hasRunAnywhere(b *domain.Board, stone domain.Stone, n int) bool {
	for _, p := range b.CellsMatching(func(s domain.Stone) bool { return s == stone }) {
		if b.HasRun(p.X, p.Y, stone, n) {
			return true
		}
	}
	return false
}
