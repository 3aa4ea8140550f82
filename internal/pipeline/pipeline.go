// Package pipeline runs one level through world construction, search and
// program synthesis and bundles the outcome.
package pipeline

import (
	"context"
	"errors"
	"time"

	"questsolver/internal/level"
	"questsolver/internal/protocol"
	"questsolver/internal/sim/compiler"
	"questsolver/internal/sim/program"
	"questsolver/internal/sim/rules"
	"questsolver/internal/sim/search"
	"questsolver/internal/sim/state"
	"questsolver/internal/sim/vocab"
	"questsolver/internal/sim/world"
)

type Options struct {
	Rules         rules.Ruleset
	MaxExpansions int
	Timeout       time.Duration

	// Vocabulary replaces the level's own toolbox when set.
	Vocabulary vocab.Set
}

type Report struct {
	LevelID  string
	Digest   string
	Status   search.Status
	Actions  []string
	Cost     int // tenths of a step
	Expanded int
	Program  *program.Program
	Blocks   int
	Elapsed  time.Duration
}

// Lines is the number of atomic actions in the solution.
func (r Report) Lines() int { return len(r.Actions) }

func (r Report) Solved() bool { return r.Status == search.StatusSolved }

// Record is the solution object written back into a level file.
func (r Report) Record() level.SolutionRecord {
	rec := level.SolutionRecord{RawActions: r.Actions, OptimalLines: r.Lines()}
	if r.Program != nil {
		rec.StructuredSolution = program.Blockly(r.Program)
		rec.OptimalBlocks = r.Blocks
	}
	return rec
}

// Run solves doc. A level with no solution is not an error: the report has
// StatusUnsolvable. Exhaustion returns the partial report together with an
// error wrapping search.ErrExhausted.
func Run(ctx context.Context, doc *level.Document, digest string, opts Options) (Report, error) {
	started := time.Now()
	rep := Report{Digest: digest}
	if doc != nil {
		rep.LevelID = doc.ID
	}

	w, err := world.Build(doc, opts.Rules)
	if err != nil {
		return rep, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	res, err := search.Search(ctx, w, search.Options{MaxExpansions: opts.MaxExpansions})
	rep.Status = res.Status
	rep.Expanded = res.Expanded
	rep.Elapsed = time.Since(started)
	if err != nil {
		return rep, err
	}
	if res.Status != search.StatusSolved {
		return rep, nil
	}

	rep.Actions = tokens(res.Actions)
	rep.Cost = res.Cost
	v := opts.Vocabulary
	if v == nil {
		v = w.Vocabulary()
	}
	rep.Program = compiler.Synthesize(rep.Actions, v)
	rep.Blocks = rep.Program.BlockCount()
	rep.Elapsed = time.Since(started)
	return rep, nil
}

func tokens(actions []state.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// Code maps a pipeline error to its protocol error code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, level.ErrInvalid):
		return protocol.ErrBadLevel
	case errors.Is(err, world.ErrConfig):
		return protocol.ErrConfig
	case errors.Is(err, search.ErrExhausted):
		return protocol.ErrExhausted
	default:
		return protocol.ErrInternal
	}
}
