// Package compiler turns a flat action sequence into a structured program
// by extracting repeated spans into procedures and consecutive repeats into
// loops, limited to what the level's vocabulary allows.
package compiler

import (
	"strconv"
	"strings"

	"questsolver/internal/sim/program"
	"questsolver/internal/sim/vocab"
)

const (
	MaxProcedures   = 3
	MinProcedureLen = 3
	MaxProcedureLen = 10

	ProcedurePrefix = "PROCEDURE_"
)

// sym is a token of the working sequence: an action, or a call to a
// procedure registered earlier in the same compilation.
type sym struct {
	tok  string
	call bool
}

func (s sym) key() string {
	if s.call {
		return "\x00" + s.tok
	}
	return s.tok
}

// Synthesize compiles seq. It never fails; with neither procedures nor loops
// available the result is the flat list of primitives.
func Synthesize(seq []string, v vocab.Set) *program.Program {
	work := make([]sym, len(seq))
	for i, t := range seq {
		work[i] = sym{tok: t}
	}

	p := &program.Program{Procedures: map[string][]program.Node{}}
	if v.CanDefineProcedures() {
		for i := 1; i <= MaxProcedures; i++ {
			span, ok := bestProcedure(work)
			if !ok {
				break
			}
			name := ProcedurePrefix + strconv.Itoa(i)
			p.Define(name, compress(span, v.CanRepeat()))
			work = replace(work, span, sym{tok: name, call: true})
		}
	}
	p.Main = compress(work, v.CanRepeat())
	return p
}

// bestProcedure picks the span of length MinProcedureLen..MaxProcedureLen
// whose extraction saves the most statements, counting overlapping
// occurrences. Ties go to the span seen first, scanning shorter lengths
// first and then left to right.
func bestProcedure(seq []sym) ([]sym, bool) {
	type candidate struct {
		start, length, count int
	}
	index := map[string]int{}
	var seen []candidate
	for length := MinProcedureLen; length <= MaxProcedureLen; length++ {
		for i := 0; i+length <= len(seq); i++ {
			k := spanKey(seq[i : i+length])
			if at, ok := index[k]; ok {
				seen[at].count++
				continue
			}
			index[k] = len(seen)
			seen = append(seen, candidate{start: i, length: length, count: 1})
		}
	}

	best, bestSavings := -1, 0
	for i, c := range seen {
		if c.count < 2 {
			continue
		}
		if s := savings(c.count, c.length); s > bestSavings {
			best, bestSavings = i, s
		}
	}
	if best < 0 {
		return nil, false
	}
	c := seen[best]
	span := make([]sym, c.length)
	copy(span, seq[c.start:c.start+c.length])
	return span, true
}

// savings of defining a procedure for a span of length l seen n times: the
// inlined statements removed minus the definition and the calls.
func savings(n, l int) int {
	return (n-1)*l - (l + n)
}

func spanKey(span []sym) string {
	var b strings.Builder
	for i, s := range span {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(s.key())
	}
	return b.String()
}

// replace swaps every non-overlapping occurrence of span, scanning left to
// right, for call.
func replace(seq, span []sym, call sym) []sym {
	out := make([]sym, 0, len(seq))
	for j := 0; j < len(seq); {
		if j+len(span) <= len(seq) && equal(seq[j:j+len(span)], span) {
			out = append(out, call)
			j += len(span)
			continue
		}
		out = append(out, seq[j])
		j++
	}
	return out
}

func equal(a, b []sym) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// compress folds consecutive repeats into loops when loops are allowed. At
// each position the longest unit that repeats profitably wins. Units that are
// themselves a repetition of a shorter unit are skipped so that six moves
// become one loop of six rather than two loops of three.
func compress(seq []sym, loops bool) []program.Node {
	out := []program.Node{}
	for i := 0; i < len(seq); {
		unit, times := 0, 0
		if loops {
			for l := 1; l <= len(seq)/2; l++ {
				if i+2*l > len(seq) {
					break
				}
				r := 1
				for i+(r+1)*l <= len(seq) && equal(seq[i:i+l], seq[i+r*l:i+(r+1)*l]) {
					r++
				}
				if r > 1 && r*l > 1+l && l >= unit && !periodic(seq[i:i+l]) {
					unit, times = l, r
				}
			}
		}
		if times > 0 {
			out = append(out, program.Repeat(times, compress(seq[i:i+unit], loops)))
			i += times * unit
			continue
		}
		if seq[i].call {
			out = append(out, program.Call(seq[i].tok))
		} else {
			out = append(out, program.Primitive(seq[i].tok))
		}
		i++
	}
	return out
}

// periodic reports whether u is two or more copies of a shorter unit.
func periodic(u []sym) bool {
	for d := 1; d <= len(u)/2; d++ {
		if len(u)%d != 0 {
			continue
		}
		ok := true
		for k := d; k < len(u); k++ {
			if u[k] != u[k-d] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
