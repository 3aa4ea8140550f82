// Package world is the static, read-only digest of a quest level: geometry,
// items, switches, portals, goals and the allowed instruction vocabulary.
package world

import (
	"sort"

	"questsolver/internal/sim/rules"
	"questsolver/internal/sim/vocab"
)

type SwitchState string

const (
	SwitchOn  SwitchState = "on"
	SwitchOff SwitchState = "off"
)

func (s SwitchState) Toggle() SwitchState {
	if s == SwitchOn {
		return SwitchOff
	}
	return SwitchOn
}

type Collectible struct {
	ID   string
	Type string
	Pos  Pos
}

type Switch struct {
	ID      string
	Pos     Pos
	Initial SwitchState
}

type Portal struct {
	ID     string
	Pos    Pos
	Target Pos
}

const (
	GoalSwitch   = "switch"
	GoalObstacle = "obstacle"

	DefaultSolutionType = "reach_target"
)

// Goal is the win condition beyond reaching the finish. Items maps a goal
// type to its resolved minimum count.
type Goal struct {
	Type  string
	Items map[string]int
}

// ItemTypes returns the goal types in a stable order.
func (g Goal) ItemTypes() []string {
	out := make([]string, 0, len(g.Items))
	for k := range g.Items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type World struct {
	rules rules.Ruleset

	start    Pos
	startDir int
	finish   Pos

	models map[Pos]string

	collectiblesByPos map[Pos]Collectible
	collectiblesByID  map[string]Collectible
	collectibleOrder  []string

	switches    map[Pos]Switch
	switchOrder []string

	portals map[Pos]Portal

	goal  Goal
	vocab vocab.Set
}

func (w *World) Rules() rules.Ruleset { return w.rules }
func (w *World) Start() (Pos, int)    { return w.start, w.startDir }
func (w *World) Finish() Pos          { return w.finish }
func (w *World) Goal() Goal           { return w.goal }
func (w *World) Vocabulary() vocab.Set { return w.vocab }

func (w *World) ModelAt(p Pos) (string, bool) {
	m, ok := w.models[p]
	return m, ok
}

// GroundAt is the model directly beneath p.
func (w *World) GroundAt(p Pos) (string, bool) { return w.ModelAt(p.Below()) }

func (w *World) IsWalkable(model string) bool { return w.rules.Walkable(model) }
func (w *World) IsJumpable(model string) bool { return w.rules.Jumpable(model) }

func (w *World) CollectibleAt(p Pos) (Collectible, bool) {
	c, ok := w.collectiblesByPos[p]
	return c, ok
}

func (w *World) CollectibleByID(id string) (Collectible, bool) {
	c, ok := w.collectiblesByID[id]
	return c, ok
}

// Collectibles returns every collectible ordered by id.
func (w *World) Collectibles() []Collectible {
	out := make([]Collectible, 0, len(w.collectibleOrder))
	for _, id := range w.collectibleOrder {
		out = append(out, w.collectiblesByID[id])
	}
	return out
}

func (w *World) SwitchAt(p Pos) (Switch, bool) {
	s, ok := w.switches[p]
	return s, ok
}

// Switches returns every switch ordered by id.
func (w *World) Switches() []Switch {
	byID := make(map[string]Switch, len(w.switches))
	for _, s := range w.switches {
		byID[s.ID] = s
	}
	out := make([]Switch, 0, len(w.switchOrder))
	for _, id := range w.switchOrder {
		out = append(out, byID[id])
	}
	return out
}

func (w *World) PortalAt(p Pos) (Pos, bool) {
	pt, ok := w.portals[p]
	if !ok {
		return Pos{}, false
	}
	return pt.Target, true
}
