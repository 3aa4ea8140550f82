// Package state is the search state of a quest level and its transition
// function.
package state

import (
	"sort"
	"strconv"
	"strings"

	"questsolver/internal/sim/world"
)

// State is one point in the search space. States handed out by Initial and
// Step are never mutated afterwards; Step always works on a Clone.
type State struct {
	Pos world.Pos
	Dir int

	collected map[string]struct{}
	switches  map[string]world.SwitchState
}

// Initial is the start state: start position and facing, nothing collected,
// every declared switch at its initial setting.
func Initial(w *world.World) State {
	pos, dir := w.Start()
	s := State{
		Pos:       pos,
		Dir:       dir,
		collected: map[string]struct{}{},
		switches:  map[string]world.SwitchState{},
	}
	for _, sw := range w.Switches() {
		s.switches[sw.ID] = sw.Initial
	}
	return s
}

// Clone copies position and facing by value and duplicates the collected set
// and switch map so the copy shares nothing with s.
func (s State) Clone() State {
	c := State{
		Pos:       s.Pos,
		Dir:       s.Dir,
		collected: make(map[string]struct{}, len(s.collected)+1),
		switches:  make(map[string]world.SwitchState, len(s.switches)),
	}
	for id := range s.collected {
		c.collected[id] = struct{}{}
	}
	for id, v := range s.switches {
		c.switches[id] = v
	}
	return c
}

func (s State) Collected(id string) bool {
	_, ok := s.collected[id]
	return ok
}

func (s State) NumCollected() int { return len(s.collected) }

func (s State) CollectedIDs() []string {
	out := make([]string, 0, len(s.collected))
	for id := range s.collected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s State) Switch(id string) (world.SwitchState, bool) {
	v, ok := s.switches[id]
	return v, ok
}

func (s State) SwitchIDs() []string {
	out := make([]string, 0, len(s.switches))
	for id := range s.switches {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s State) SwitchesOn() int {
	n := 0
	for _, v := range s.switches {
		if v == world.SwitchOn {
			n++
		}
	}
	return n
}

// Key is the canonical identity of s: equal keys mean search-equivalent
// states regardless of how they were reached.
func (s State) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.Pos.X))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(s.Pos.Y))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(s.Pos.Z))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(s.Dir))
	b.WriteString("|i:")
	for i, id := range s.CollectedIDs() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id)
	}
	b.WriteString("|s:")
	for i, id := range s.SwitchIDs() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id)
		b.WriteByte(':')
		b.WriteString(string(s.switches[id]))
	}
	return b.String()
}
