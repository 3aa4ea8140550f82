package search

import (
	"questsolver/internal/sim/state"
	"questsolver/internal/sim/world"
)

// subGoalWeight is charged per outstanding sub-goal, in steps.
const subGoalWeight = 10

// Heuristic estimates the remaining cost from s in tenths of a step. It
// counts every uncollected collectible, and every switch still off when the
// level asks for switches, as an outstanding sub-goal. It is not admissible.
func Heuristic(w *world.World, s state.State) int {
	return heuristicSteps(w, s) * state.CostScale
}

func heuristicSteps(w *world.World, s state.State) int {
	finish := w.Finish()
	var subGoals []world.Pos
	for _, c := range w.Collectibles() {
		if !s.Collected(c.ID) {
			subGoals = append(subGoals, c.Pos)
		}
	}
	if w.Goal().Items[world.GoalSwitch] > 0 {
		for _, sw := range w.Switches() {
			if v, _ := s.Switch(sw.ID); v == world.SwitchOff {
				subGoals = append(subGoals, sw.Pos)
			}
		}
	}
	if len(subGoals) == 0 {
		return s.Pos.Manhattan(finish)
	}

	nearest := -1
	farthestFromFinish := 0
	for _, p := range subGoals {
		if d := s.Pos.Manhattan(p); nearest < 0 || d < nearest {
			nearest = d
		}
		if d := p.Manhattan(finish); d > farthestFromFinish {
			farthestFromFinish = d
		}
	}
	h := nearest
	if len(subGoals) > 1 {
		h += farthestFromFinish
	}
	return h + subGoalWeight*len(subGoals)
}
