// Package search finds a cheapest-first action sequence through a quest
// level with A* over the state space.
package search

import (
	"context"
	"errors"
	"fmt"

	"questsolver/internal/sim/state"
	"questsolver/internal/sim/world"
)

// ErrExhausted is returned when the expansion budget or the context deadline
// runs out before the frontier does.
var ErrExhausted = errors.New("search budget exhausted")

type Status int

const (
	StatusSolved Status = iota
	StatusUnsolvable
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusUnsolvable:
		return "unsolvable"
	case StatusExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Options struct {
	// MaxExpansions bounds the number of popped nodes. Zero means unbounded.
	MaxExpansions int
}

type Result struct {
	Status   Status
	Actions  []state.Action
	Cost     int // tenths of a step
	Expanded int
	Final    state.State
}

// node is an arena entry. parent is an index into the same arena, -1 for
// the root.
type node struct {
	state  state.State
	parent int
	action state.Action
	g      int
	h      int
}

// ctxCheckEvery is how many expansions pass between context polls.
const ctxCheckEvery = 256

// Solve runs an unbounded search. ok is false when no sequence reaches the
// goal.
func Solve(w *world.World) ([]state.Action, bool) {
	res, err := Search(context.Background(), w, Options{})
	if err != nil || res.Status != StatusSolved {
		return nil, false
	}
	return res.Actions, true
}

// Search runs A* from the level's start state. A goal found at the start
// yields an empty, non-nil action list. On StatusExhausted the error wraps
// ErrExhausted, and the context error too when the context ended the search.
func Search(ctx context.Context, w *world.World, opts Options) (Result, error) {
	if w == nil {
		return Result{}, errors.New("search: nil world")
	}
	start := state.Initial(w)
	arena := []node{{state: start, parent: -1, h: Heuristic(w, start)}}
	var open openSet
	open.push(0, arena[0].h)
	visited := map[string]struct{}{}

	expanded := 0
	for {
		idx, ok := open.pop()
		if !ok {
			return Result{Status: StatusUnsolvable, Expanded: expanded}, nil
		}
		cur := arena[idx]
		key := cur.state.Key()
		if _, seen := visited[key]; seen {
			continue
		}
		if opts.MaxExpansions > 0 && expanded >= opts.MaxExpansions {
			return Result{Status: StatusExhausted, Expanded: expanded},
				fmt.Errorf("%w: %d expansions", ErrExhausted, expanded)
		}
		if expanded%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Status: StatusExhausted, Expanded: expanded},
					fmt.Errorf("%w: %w", ErrExhausted, err)
			}
		}
		visited[key] = struct{}{}
		expanded++

		if IsGoal(w, cur.state) {
			return Result{
				Status:   StatusSolved,
				Actions:  reconstruct(arena, idx),
				Cost:     cur.g,
				Expanded: expanded,
				Final:    cur.state,
			}, nil
		}

		for _, a := range state.Actions {
			next, ok := state.Step(w, cur.state, a)
			if !ok {
				continue
			}
			if _, seen := visited[next.Key()]; seen {
				continue
			}
			g := cur.g + state.Cost(cur.state, next)
			h := Heuristic(w, next)
			arena = append(arena, node{state: next, parent: idx, action: a, g: g, h: h})
			open.push(len(arena)-1, g+h)
		}
	}
}

func reconstruct(arena []node, idx int) []state.Action {
	n := 0
	for i := idx; arena[i].parent >= 0; i = arena[i].parent {
		n++
	}
	out := make([]state.Action, n)
	for i := idx; arena[i].parent >= 0; i = arena[i].parent {
		n--
		out[n] = arena[i].action
	}
	return out
}
