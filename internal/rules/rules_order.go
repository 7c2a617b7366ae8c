package rules

var (
	roundTripLastRound = Key[int]("rule:roundTrip:lastRound")
	shuffleLastRound   = Key[int]("rule:turnOrderShuffle:lastRound")
)

// roundTripTurnsRule reverses the play order after every completed round.
func roundTripTurnsRule() Descriptor {
	return Descriptor{
		ID:         RoundTripTurns,
		LimitScore: 100,
		Priority:   100,
		Capabilities: Capabilities{
			ReorderTurns: func(rt *Runtime) bool {
				return reorderOncePerRound(rt, roundTripLastRound, func(order []string) {
					for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
						order[i], order[j] = order[j], order[i]
					}
				})
			},
		},
	}
}

// turnOrderShuffleRule draws a new random play order after every completed round.
func turnOrderShuffleRule() Descriptor {
	return Descriptor{
		ID:         TurnOrderShuffle,
		LimitScore: 2000,
		Priority:   2000,
		Capabilities: Capabilities{
			ReorderTurns: func(rt *Runtime) bool {
				return reorderOncePerRound(rt, shuffleLastRound, func(order []string) {
					rt.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
				})
			},
		},
	}
}

func reorderOncePerRound(rt *Runtime, key Key[int], permute func([]string)) bool {
	if rt.Trigger != TriggerTurnRoundCompleted || rt.Turns == nil {
		return false
	}
	round := rt.Turns.Counters().RoundNumber
	if last, ok := Get(rt.Data, key); ok && last == round {
		return false
	}
	Put(rt.Data, key, round)
	order := rt.Turns.Order()
	if len(order) < 2 {
		return false
	}
	permute(order)
	snap, err := rt.Turns.Reseed(order, rt.disconnected(), rt.Now)
	if err != nil {
		rt.debugf("RuleEngine: reseed failed: %v", err)
		return false
	}
	rt.Turn = snap
	return true
}
