package state

import (
	"questsolver/internal/sim/mathx"
	"questsolver/internal/sim/world"
)

type Action string

const (
	MoveForward  Action = "moveForward"
	TurnLeft     Action = "turnLeft"
	TurnRight    Action = "turnRight"
	Collect      Action = "collect"
	Jump         Action = "jump"
	ToggleSwitch Action = "toggleSwitch"
)

// Actions is the expansion order. It also fixes tie-breaks during search.
var Actions = [...]Action{MoveForward, TurnLeft, TurnRight, Collect, Jump, ToggleSwitch}

func (a Action) Valid() bool {
	for _, b := range Actions {
		if a == b {
			return true
		}
	}
	return false
}

// Costs are in tenths of a step. Actions that leave the agent in place cost a
// little more so that spatial progress wins ties.
const (
	CostScale      = 10
	CostMove       = 10
	CostStationary = 11
)

// Cost of going from s to next.
func Cost(s, next State) int {
	if s.Pos == next.Pos {
		return CostStationary
	}
	return CostMove
}

// Step applies a to s. ok is false when a's precondition does not hold.
func Step(w *world.World, s State, a Action) (next State, ok bool) {
	switch a {
	case MoveForward:
		ahead := world.Ahead(s.Pos, s.Dir)
		if _, blocked := w.ModelAt(ahead); blocked {
			return State{}, false
		}
		ground, ok := w.GroundAt(ahead)
		if !ok || !w.IsWalkable(ground) {
			return State{}, false
		}
		next = s.Clone()
		next.Pos = ahead
	case TurnLeft:
		next = s.Clone()
		next.Dir = mathx.Mod(s.Dir+3, world.NumDirections)
	case TurnRight:
		next = s.Clone()
		next.Dir = mathx.Mod(s.Dir+1, world.NumDirections)
	case Jump:
		// The obstacle itself must be something the agent can stand on.
		ahead := world.Ahead(s.Pos, s.Dir)
		model, ok := w.ModelAt(ahead)
		if !ok || !w.IsJumpable(model) || !w.IsWalkable(model) {
			return State{}, false
		}
		next = s.Clone()
		next.Pos = ahead.Above()
	case Collect:
		c, ok := w.CollectibleAt(s.Pos)
		if !ok || s.Collected(c.ID) {
			return State{}, false
		}
		next = s.Clone()
		next.collected[c.ID] = struct{}{}
	case ToggleSwitch:
		sw, ok := w.SwitchAt(s.Pos)
		if !ok {
			return State{}, false
		}
		next = s.Clone()
		next.switches[sw.ID] = s.switches[sw.ID].Toggle()
	default:
		return State{}, false
	}
	return next, true
}

// Replay applies actions from the initial state, stopping at the first one
// whose precondition fails. It returns the final state and how many actions
// were applied.
func Replay(w *world.World, actions []Action) (State, int) {
	s := Initial(w)
	for i, a := range actions {
		next, ok := Step(w, s, a)
		if !ok {
			return s, i
		}
		s = next
	}
	return s, len(actions)
}
