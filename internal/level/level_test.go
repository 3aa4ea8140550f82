package level

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const corridorJSON = `{
  "id": "corridor",
  "gameConfig": {
    "players": [{"id": "p1", "start": {"x": 0, "y": 1, "z": 0, "direction": 1}}],
    "finish": {"x": 2, "y": 1, "z": 0},
    "blocks": [
      {"modelKey": "ground.normal", "position": {"x": 0, "y": 0, "z": 0}},
      {"modelKey": "ground.normal", "position": {"x": 1, "y": 0, "z": 0}},
      {"modelKey": "ground.normal", "position": {"x": 2, "y": 0, "z": 0}}
    ],
    "interactibles": [
      {"type": "switch", "id": "s1", "position": {"x": 1, "y": 1, "z": 0}}
    ]
  },
  "blocklyConfig": {"toolbox": {"kind": "categoryToolbox", "contents": [
    {"kind": "category", "name": "moves", "contents": [{"kind": "block", "type": "maze_moveForward"}]}
  ]}},
  "solution": {"type": "reach_target", "itemGoals": {"crystal": "all", "switch": 1}, "optimalBlocks": 9}
}`

func TestParse_DecodesDocument(t *testing.T) {
	doc, err := Parse([]byte(corridorJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.ID != "corridor" {
		t.Fatalf("id=%q", doc.ID)
	}
	start := doc.GameConfig.Players[0].Start
	if start == nil || start.Direction == nil || *start.Direction != 1 || start.Y != 1 {
		t.Fatalf("unexpected start: %+v", start)
	}
	if got := len(doc.GameConfig.Blocks); got != 3 {
		t.Fatalf("blocks=%d want 3", got)
	}
	want := map[string]GoalCount{"crystal": {All: true}, "switch": {N: 1}}
	if diff := cmp.Diff(want, doc.Solution.ItemGoals); diff != "" {
		t.Fatalf("itemGoals mismatch (-want +got):\n%s", diff)
	}
	if doc.GameConfig.Interactibles[0].InitialState != "" {
		t.Fatalf("expected empty initial state to be left for world defaults")
	}
}

func TestParse_RejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "not json", in: `{`},
		{name: "missing gameConfig", in: `{"solution": {}}`},
		{name: "bad position", in: `{"gameConfig": {"finish": {"x": "a", "y": 0}}}`},
		{name: "bad goal", in: `{"gameConfig": {}, "solution": {"itemGoals": {"crystal": "some"}}}`},
		{name: "bad switch state", in: `{"gameConfig": {"interactibles": [{"type": "switch", "id": "s", "initialState": "half"}]}}`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.in)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", c.name, err)
		}
	}
}

func TestGoalCount_Resolve(t *testing.T) {
	if got := (GoalCount{All: true}).Resolve(4); got != 4 {
		t.Fatalf("all resolve=%d", got)
	}
	if got := (GoalCount{N: 2}).Resolve(4); got != 2 {
		t.Fatalf("n resolve=%d", got)
	}
	b, _ := json.Marshal(map[string]GoalCount{"a": {All: true}, "b": {N: 3}})
	if string(b) != `{"a":"all","b":3}` {
		t.Fatalf("marshal=%s", b)
	}
}

func TestLoad_ComputesDigest(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "corridor.json")
	if err := os.WriteFile(p, []byte(corridorJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Digest != Digest([]byte(corridorJSON)) || len(f.Digest) != 64 {
		t.Fatalf("digest=%q", f.Digest)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestAnnotate_PreservesUnknownFields(t *testing.T) {
	out, err := Annotate([]byte(corridorJSON), SolutionRecord{
		RawActions:         []string{"moveForward", "moveForward"},
		StructuredSolution: map[string]any{"main": []any{}},
		OptimalBlocks:      2,
		OptimalLines:       2,
	})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	var top map[string]any
	if err := json.Unmarshal(out, &top); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sol := top["solution"].(map[string]any)
	if sol["type"] != "reach_target" {
		t.Fatalf("solution.type lost: %v", sol["type"])
	}
	if sol["optimalBlocks"].(float64) != 2 || sol["optimalLines"].(float64) != 2 {
		t.Fatalf("counts not written: %v", sol)
	}
	if !strings.Contains(string(out), `"blocklyConfig"`) {
		t.Fatalf("blocklyConfig dropped")
	}
	if _, err := Parse(out); err != nil {
		t.Fatalf("annotated level no longer parses: %v", err)
	}
}
