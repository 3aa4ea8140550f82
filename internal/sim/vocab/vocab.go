// Package vocab is the instruction vocabulary a level allows: the block types
// listed in its toolbox plus capability markers.
package vocab

import (
	"sort"

	"questsolver/internal/level"
)

const (
	// Procedure marks a toolbox that lets players define functions.
	Procedure = "PROCEDURE"
	// Repeat is the counted loop block.
	Repeat = "maze_repeat"
)

type Set map[string]struct{}

func Of(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// FromToolbox walks a nested category/block tree collecting leaf block types.
// A category with custom "PROCEDURE" contributes the Procedure marker.
func FromToolbox(tb level.Toolbox) Set {
	s := Set{}
	s.collect(tb.Contents)
	return s
}

func (s Set) collect(items []level.ToolboxItem) {
	for _, it := range items {
		switch it.Kind {
		case "block":
			if it.Type != "" {
				s[it.Type] = struct{}{}
			}
		case "category":
			if it.Custom == Procedure {
				s[Procedure] = struct{}{}
			}
			s.collect(it.Contents)
		}
	}
}

func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func (s Set) CanDefineProcedures() bool { return s.Has(Procedure) }
func (s Set) CanRepeat() bool           { return s.Has(Repeat) }

func (s Set) Tokens() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
