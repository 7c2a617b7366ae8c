package rules

import "omok/internal/domain"

// randomPlacementRule turns half of all placements into a blocker or a joker.
func randomPlacementRule() Descriptor {
	return Descriptor{
		ID:         RandomPlacement,
		LimitScore: 300,
		Priority:   300,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPrePlacement || rt.Move == nil {
				return
			}
			roll := rt.float()
			if roll >= 0.5 {
				return
			}
			if roll < 0.25 {
				rt.Move.Stone = domain.StoneBlocker
			} else {
				rt.Move.Stone = domain.StoneJoker
			}
		},
	}
}

// aimMissRule drifts the placement to a random empty neighbour of the chosen cell.
func aimMissRule() Descriptor {
	return Descriptor{
		ID:         AimMiss,
		LimitScore: 1000,
		Priority:   1000,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPrePlacement || rt.Move == nil || rt.Board == nil {
				return
			}
			var candidates []domain.Point
			for _, p := range rt.Board.Neighbors8(rt.Move.X, rt.Move.Y) {
				if rt.Board.IsEmpty(p.X, p.Y) {
					candidates = append(candidates, p)
				}
			}
			if len(candidates) == 0 {
				return
			}
			pick := candidates[rt.intn(len(candidates))]
			rt.Move.X, rt.Move.Y = pick.X, pick.Y
		},
	}
}

var protectiveZones = Key[*Zones]("rule:protectiveZone:zones")

// protectiveZoneRule forbids placing inside the 3x3 area around each player's last stone.
func protectiveZoneRule() Descriptor {
	return Descriptor{
		ID:         ProtectiveZone,
		LimitScore: 1800,
		Priority:   1800,
		Invoke: func(rt *Runtime) {
			if rt.Trigger != TriggerPostPlacement || rt.Move == nil || rt.Board == nil {
				return
			}
			zones, ok := Get(rt.Data, protectiveZones)
			if !ok {
				zones = NewZones()
				Put(rt.Data, protectiveZones, zones)
			}
			cells := []domain.Point{rt.Move.Point()}
			cells = append(cells, rt.Board.Neighbors8(rt.Move.X, rt.Move.Y)...)
			zones.Replace(rt.Move.UserID, cells)
		},
		Capabilities: Capabilities{
			ValidateMove: func(rt *Runtime) Status {
				zones, ok := Get(rt.Data, protectiveZones)
				if !ok || rt.Move == nil {
					return StatusOK
				}
				if zones.Restricted(rt.Move.Point()) {
					return StatusRestrictedZone
				}
				return StatusOK
			},
		},
	}
}
