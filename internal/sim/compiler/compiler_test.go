package compiler

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"questsolver/internal/sim/program"
	"questsolver/internal/sim/vocab"
)

const (
	mv = "moveForward"
	tl = "turnLeft"
	tr = "turnRight"
	co = "collect"
	jp = "jump"
)

var (
	loopsOnly = vocab.Of("maze_moveForward", vocab.Repeat)
	procsOnly = vocab.Of("maze_moveForward", vocab.Procedure)
	both      = vocab.Of("maze_moveForward", vocab.Repeat, vocab.Procedure)
	neither   = vocab.Of("maze_moveForward", "maze_turn")
)

func TestSynthesize_SixMovesBecomeOneLoop(t *testing.T) {
	seq := strings.Split(strings.TrimSuffix(strings.Repeat(mv+",", 6), ","), ",")
	p := Synthesize(seq, loopsOnly)

	want := []program.Node{program.Repeat(6, []program.Node{program.Primitive(mv)})}
	if diff := cmp.Diff(want, p.Main); diff != "" {
		t.Fatalf("main (-want +got):\n%s", diff)
	}
	if len(p.Procedures) != 0 {
		t.Fatalf("unexpected procedures: %v", p.Order)
	}
	if got := p.BlockCount(); got != 2 {
		t.Fatalf("block count: got %d want 2", got)
	}
}

func TestSynthesize_Empty(t *testing.T) {
	for _, v := range []vocab.Set{neither, loopsOnly, procsOnly, both} {
		p := Synthesize(nil, v)
		if p.Main == nil || len(p.Main) != 0 || len(p.Procedures) != 0 {
			t.Fatalf("vocab %v: got %+v", v.Tokens(), p)
		}
		if got := p.BlockCount(); got != 1 {
			t.Fatalf("vocab %v: block count %d want 1", v.Tokens(), got)
		}
	}
}

func TestSynthesize_NoCapabilitiesStaysFlat(t *testing.T) {
	seq := []string{mv, mv, mv, mv, tl, mv, mv, mv, mv}
	p := Synthesize(seq, neither)
	if len(p.Main) != len(seq) {
		t.Fatalf("main: got %d nodes want %d", len(p.Main), len(seq))
	}
	for i, n := range p.Main {
		if n.Kind != program.KindPrimitive || n.Token != seq[i] {
			t.Fatalf("node %d: got %+v", i, n)
		}
	}
}

func TestSynthesize_ExtractsProcedure(t *testing.T) {
	seq := []string{
		mv, mv, tl, co,
		tr,
		mv, mv, tl, co,
		jp,
		mv, mv, tl, co,
	}
	p := Synthesize(seq, procsOnly)

	wantBody := []program.Node{program.Primitive(mv), program.Primitive(mv), program.Primitive(tl), program.Primitive(co)}
	if diff := cmp.Diff([]string{"PROCEDURE_1"}, p.Order); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantBody, p.Procedures["PROCEDURE_1"]); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}
	wantMain := []program.Node{
		program.Call("PROCEDURE_1"), program.Primitive(tr),
		program.Call("PROCEDURE_1"), program.Primitive(jp),
		program.Call("PROCEDURE_1"),
	}
	if diff := cmp.Diff(wantMain, p.Main); diff != "" {
		t.Fatalf("main (-want +got):\n%s", diff)
	}
	if got := p.BlockCount(); got != 11 {
		t.Fatalf("block count: got %d want 11", got)
	}
}

func TestSynthesize_LongestUnitWins(t *testing.T) {
	seq := []string{mv, tr, mv, tr, mv, tr, co}
	p := Synthesize(seq, loopsOnly)
	want := []program.Node{
		program.Repeat(3, []program.Node{program.Primitive(mv), program.Primitive(tr)}),
		program.Primitive(co),
	}
	if diff := cmp.Diff(want, p.Main); diff != "" {
		t.Fatalf("main (-want +got):\n%s", diff)
	}
}

func TestSynthesize_LoopNeedsPayoff(t *testing.T) {
	// Two copies of a single token cost as much inlined as looped.
	p := Synthesize([]string{mv, mv, tl}, loopsOnly)
	if len(p.Main) != 3 {
		t.Fatalf("expected flat output, got %+v", p.Main)
	}
}

func TestSynthesize_RoundTrip(t *testing.T) {
	alphabet := []string{mv, mv, mv, tl, tr, co, jp}
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 300; iter++ {
		n := rng.Intn(40)
		seq := make([]string, n)
		for i := range seq {
			seq[i] = alphabet[rng.Intn(len(alphabet))]
		}
		for _, v := range []vocab.Set{neither, loopsOnly, procsOnly, both} {
			p := Synthesize(seq, v)
			got, err := p.Flatten()
			if err != nil {
				t.Fatalf("iter %d vocab %v: flatten: %v", iter, v.Tokens(), err)
			}
			if diff := cmp.Diff(seq, got); diff != "" {
				t.Fatalf("iter %d vocab %v: round trip (-want +got):\n%s", iter, v.Tokens(), diff)
			}
			if p.BlockCount() < 1 {
				t.Fatalf("iter %d: block count %d", iter, p.BlockCount())
			}
			if !v.CanDefineProcedures() && len(p.Procedures) != 0 {
				t.Fatalf("iter %d: procedures without capability", iter)
			}
			if !v.CanRepeat() && p.Depth() != 0 {
				t.Fatalf("iter %d: loops without capability", iter)
			}
		}
	}
}

func TestSavings(t *testing.T) {
	cases := []struct {
		n, l, want int
	}{
		{2, 3, -2},
		{3, 3, 0},
		{3, 4, 1},
		{4, 3, 2},
		{2, 10, -2},
	}
	for _, tc := range cases {
		if got := savings(tc.n, tc.l); got != tc.want {
			t.Fatalf("savings(%d,%d): got %d want %d", tc.n, tc.l, got, tc.want)
		}
	}
}

func TestBestProcedure_FirstSeenWinsTies(t *testing.T) {
	// "abc" and "xyz" each appear four times with equal savings.
	var seq []sym
	for i := 0; i < 4; i++ {
		for _, s := range []string{"a", "b", "c", "-" + string(rune('0'+i)), "x", "y", "z", "+" + string(rune('0'+i))} {
			seq = append(seq, sym{tok: s})
		}
	}
	span, ok := bestProcedure(seq)
	if !ok {
		t.Fatalf("expected a procedure")
	}
	if got := spanKey(span); got != spanKey([]sym{{tok: "a"}, {tok: "b"}, {tok: "c"}}) {
		t.Fatalf("got %q", got)
	}
}

func TestPeriodic(t *testing.T) {
	mk := func(toks ...string) []sym {
		out := make([]sym, len(toks))
		for i, s := range toks {
			out[i] = sym{tok: s}
		}
		return out
	}
	if !periodic(mk("a", "a")) || !periodic(mk("a", "b", "a", "b")) {
		t.Fatalf("expected periodic")
	}
	if periodic(mk("a")) || periodic(mk("a", "b", "a")) {
		t.Fatalf("expected aperiodic")
	}
	if periodic([]sym{{tok: "P"}, {tok: "P", call: true}}) {
		t.Fatalf("call and primitive with the same name must differ")
	}
}
