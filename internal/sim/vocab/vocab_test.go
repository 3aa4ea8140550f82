package vocab

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"questsolver/internal/level"
)

func TestFromToolbox_CollectsLeavesAndProcedureMarker(t *testing.T) {
	tb := level.Toolbox{
		Kind: "categoryToolbox",
		Contents: []level.ToolboxItem{
			{Kind: "category", Name: "moves", Contents: []level.ToolboxItem{
				{Kind: "block", Type: "maze_moveForward"},
				{Kind: "block", Type: "maze_turn"},
			}},
			{Kind: "sep"},
			{Kind: "category", Name: "loops", Contents: []level.ToolboxItem{
				{Kind: "category", Name: "nested", Contents: []level.ToolboxItem{
					{Kind: "block", Type: "maze_repeat"},
				}},
			}},
			{Kind: "category", Name: "functions", Custom: "PROCEDURE"},
			{Kind: "category", Name: "vars", Custom: "VARIABLE"},
			{Kind: "block"},
		},
	}
	s := FromToolbox(tb)
	want := []string{"PROCEDURE", "maze_moveForward", "maze_repeat", "maze_turn"}
	if diff := cmp.Diff(want, s.Tokens()); diff != "" {
		t.Fatalf("tokens (-want +got):\n%s", diff)
	}
	if !s.CanDefineProcedures() || !s.CanRepeat() {
		t.Fatalf("expected both capabilities")
	}
}

func TestFromToolbox_Empty(t *testing.T) {
	s := FromToolbox(level.Toolbox{})
	if len(s) != 0 || s.CanRepeat() || s.CanDefineProcedures() {
		t.Fatalf("expected empty vocabulary, got %v", s.Tokens())
	}
}
