package program

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sample() *Program {
	p := &Program{Main: []Node{
		Call("PROCEDURE_1"),
		Repeat(2, []Node{Primitive("turnRight"), Call("PROCEDURE_1")}),
		Primitive("collect"),
	}}
	p.Define("PROCEDURE_1", []Node{Repeat(3, []Node{Primitive("moveForward")}), Primitive("jump")})
	return p
}

func TestFlatten_ExpandsLoopsAndCalls(t *testing.T) {
	got, err := sample().Flatten()
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	body := []string{"moveForward", "moveForward", "moveForward", "jump"}
	var want []string
	want = append(want, body...)
	for i := 0; i < 2; i++ {
		want = append(want, "turnRight")
		want = append(want, body...)
	}
	want = append(want, "collect")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten (-want +got):\n%s", diff)
	}
}

func TestFlatten_Errors(t *testing.T) {
	p := &Program{Main: []Node{Call("missing")}}
	if _, err := p.Flatten(); !errors.Is(err, ErrUnknownProcedure) {
		t.Fatalf("expected ErrUnknownProcedure, got %v", err)
	}
	loop := &Program{Main: []Node{Call("A")}}
	loop.Define("A", []Node{Call("B")})
	loop.Define("B", []Node{Call("A")})
	if _, err := loop.Flatten(); !errors.Is(err, ErrRecursiveCall) {
		t.Fatalf("expected ErrRecursiveCall, got %v", err)
	}
	empty := &Program{}
	got, err := empty.Flatten()
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty program: got %v err=%v", got, err)
	}
}

func TestBlockCount(t *testing.T) {
	// root 1 + main (call, repeat, collect) 3 + define 1 + body (repeat, jump) 2
	if got := sample().BlockCount(); got != 7 {
		t.Fatalf("got %d want 7", got)
	}
	if got := (&Program{}).BlockCount(); got != 1 {
		t.Fatalf("empty: got %d want 1", got)
	}
}

func TestBlockCount_NonDecreasingWithNesting(t *testing.T) {
	mv := Primitive("moveForward")
	flat := &Program{Main: []Node{mv, mv, mv, mv, mv, mv}}
	one := &Program{Main: []Node{Repeat(6, []Node{mv})}}
	two := &Program{Main: []Node{Repeat(2, []Node{Repeat(3, []Node{mv})})}}
	three := &Program{Main: []Node{Repeat(1, []Node{Repeat(2, []Node{Repeat(3, []Node{mv})})})}}

	for _, p := range []*Program{flat, one, two, three} {
		got, err := p.Flatten()
		if err != nil || len(got) != 6 {
			t.Fatalf("flatten: %v err=%v", got, err)
		}
	}
	if flat.BlockCount() != 7 {
		t.Fatalf("flat: %d", flat.BlockCount())
	}
	if one.BlockCount() != 2 || one.BlockCount() > two.BlockCount() || two.BlockCount() > three.BlockCount() {
		t.Fatalf("counts: %d %d %d", one.BlockCount(), two.BlockCount(), three.BlockCount())
	}
	if one.Depth() != 1 || two.Depth() != 2 || three.Depth() != 3 || flat.Depth() != 0 {
		t.Fatalf("depths: %d %d %d %d", flat.Depth(), one.Depth(), two.Depth(), three.Depth())
	}
}

func TestFormat(t *testing.T) {
	want := "DEFINE PROCEDURE_1:\n" +
		"  repeat 3 times:\n" +
		"    moveForward\n" +
		"  jump\n" +
		"\n" +
		"MAIN PROGRAM:\n" +
		"  On start:\n" +
		"    CALL PROCEDURE_1\n" +
		"    repeat 2 times:\n" +
		"      turnRight\n" +
		"      CALL PROCEDURE_1\n" +
		"    collect\n"
	if diff := cmp.Diff(want, Format(sample())); diff != "" {
		t.Fatalf("format (-want +got):\n%s", diff)
	}
	if got := Format(&Program{}); got != "MAIN PROGRAM:\n  On start:\n" {
		t.Fatalf("empty: %q", got)
	}
}

func TestBlockly(t *testing.T) {
	s := Blockly(sample())
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"main":[{"type":"CALL","name":"PROCEDURE_1"},` +
		`{"type":"maze_repeat","times":2,"actions":[{"type":"maze_turn","direction":"turnRight"},{"type":"CALL","name":"PROCEDURE_1"}]},` +
		`{"type":"maze_collect"}],` +
		`"procedures":{"PROCEDURE_1":[{"type":"maze_repeat","times":3,"actions":[{"type":"maze_moveForward"}]},{"type":"maze_jump"}]}}`
	if string(b) != want {
		t.Fatalf("blockly:\n got %s\nwant %s", b, want)
	}
	if got := BlockFor("dance"); got.Type != "dance" {
		t.Fatalf("passthrough: %+v", got)
	}
}
