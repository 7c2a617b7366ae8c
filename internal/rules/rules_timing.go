package rules

import "time"

const speedGameDuration = 5 * time.Second

var speedGameApplied = Key[bool]("rule:speedGame:applied")

// speedGameRule shortens every turn to five seconds for the whole game.
func speedGameRule() Descriptor {
	return Descriptor{
		ID:         SpeedGame,
		LimitScore: 0,
		Priority:   0,
		Capabilities: Capabilities{
			AdjustTiming: func(rt *Runtime) bool {
				if applied, _ := Get(rt.Data, speedGameApplied); applied || rt.Turns == nil {
					return false
				}
				rt.Turns.SetDuration(speedGameDuration)
				rt.Turns.RestartWindow(rt.Now)
				Put(rt.Data, speedGameApplied, true)
				return true
			},
		},
	}
}
