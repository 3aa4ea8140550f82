package search

import (
	"questsolver/internal/sim/state"
	"questsolver/internal/sim/world"
)

// IsGoal reports whether s stands on the finish with every item goal met.
// Obstacle goals are accepted unconditionally.
func IsGoal(w *world.World, s state.State) bool {
	if s.Pos != w.Finish() {
		return false
	}
	g := w.Goal()
	for _, typ := range g.ItemTypes() {
		need := g.Items[typ]
		switch typ {
		case world.GoalSwitch:
			if s.SwitchesOn() < need {
				return false
			}
		case world.GoalObstacle:
		default:
			if collectedOfType(w, s, typ) < need {
				return false
			}
		}
	}
	return true
}

func collectedOfType(w *world.World, s state.State, typ string) int {
	n := 0
	for _, id := range s.CollectedIDs() {
		if c, ok := w.CollectibleByID(id); ok && c.Type == typ {
			n++
		}
	}
	return n
}
