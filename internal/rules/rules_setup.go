package rules

import "omok/internal/domain"

// colosseumRule walls the board edge with blockers, two cells deep.
func colosseumRule() Descriptor {
	return Descriptor{
		ID:         Colosseum,
		LimitScore: 600,
		Priority:   600,
		Capabilities: Capabilities{
			SetupBoard: func(rt *Runtime) bool {
				b := rt.Board
				if b == nil {
					return false
				}
				w, h := b.Width(), b.Height()
				margin := min(2, min(w, h)/2)
				wrote := false
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						if x < margin || y < margin || x >= w-margin || y >= h-margin {
							wrote = b.SetStone(x, y, domain.StoneBlocker, domain.SystemPlacement()) || wrote
						}
					}
				}
				return wrote
			},
		},
	}
}

var blackViewActive = Key[bool]("rule:blackView:active")

// blackViewRule makes every player stone look like the first player's on the wire.
func blackViewRule() Descriptor {
	return Descriptor{
		ID:         BlackView,
		LimitScore: 1500,
		Priority:   1500,
		Invoke: func(rt *Runtime) {
			if rt.Trigger == TriggerGameStart {
				Put(rt.Data, blackViewActive, true)
			}
		},
		Capabilities: Capabilities{
			TransformSnapshot: func(data *Blackboard, snapshot []byte) []byte {
				if active, _ := Get(data, blackViewActive); !active || len(snapshot) == 0 {
					return snapshot
				}
				masked := make([]byte, len(snapshot))
				for i, c := range snapshot {
					if domain.StoneFromByte(c).IsPlayer() {
						c = domain.StonePlayer1.Byte()
					}
					masked[i] = c
				}
				return masked
			},
		},
	}
}
