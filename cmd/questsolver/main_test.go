package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"questsolver/internal/sim/vocab"
	"questsolver/internal/sim/worldtest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeLevel(t *testing.T, dir, name string, raw []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatalf("write level: %v", err)
	}
	return p
}

func TestSolve_WritesSolutionBack(t *testing.T) {
	dir := t.TempDir()
	lvl := worldtest.NewLevel().Grid("S.....F").Toolbox("maze_moveForward", vocab.Repeat).JSON(t)
	path := writeLevel(t, dir, "corridor.json", lvl)

	out, err := run(t, "solve", "--data", dir, "--write", path)
	if err != nil {
		t.Fatalf("solve: %v\n%s", err, out)
	}
	if !strings.Contains(out, "6 actions, 2 blocks") || !strings.Contains(out, "repeat 6 times:") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var doc struct {
		Solution struct {
			RawActions    []string `json:"rawActions"`
			OptimalBlocks int      `json:"optimalBlocks"`
			OptimalLines  int      `json:"optimalLines"`
		} `json:"solution"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Solution.OptimalBlocks != 2 || doc.Solution.OptimalLines != 6 || len(doc.Solution.RawActions) != 6 {
		t.Fatalf("solution not written: %+v", doc.Solution)
	}
}

func TestSolve_ReportsUnsolvable(t *testing.T) {
	dir := t.TempDir()
	path := writeLevel(t, dir, "gap.json", worldtest.NewLevel().Grid("S F").JSON(t))
	out, err := run(t, "solve", "--record=false", path)
	if err == nil {
		t.Fatalf("expected error for unsolvable level")
	}
	if !strings.Contains(out, "unsolvable") {
		t.Fatalf("output: %s", out)
	}
}

func TestBatch_ThenReplayAndIndex(t *testing.T) {
	dir := t.TempDir()
	levels := filepath.Join(dir, "levels")
	if err := os.MkdirAll(levels, 0o755); err != nil {
		t.Fatal(err)
	}
	writeLevel(t, levels, "a.json", worldtest.NewLevel().Grid("S..F").JSON(t))
	writeLevel(t, levels, "b.json", worldtest.NewLevel().Grid("Sc.s.F").Goal("crystal", 1).Goal("switch", 1).JSON(t))
	writeLevel(t, levels, "c.json", worldtest.NewLevel().Grid(
		"S..",
		"  .",
		"  F",
	).JSON(t))
	data := filepath.Join(dir, "data")

	out, err := run(t, "batch", "--data", data, "--workers", "2", levels)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "total=3 solved=3") {
		t.Fatalf("summary: %s", out)
	}

	out, err = run(t, "replay", "--data", data)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	if !strings.Contains(out, "checked=3 skipped=0 mismatched=0") {
		t.Fatalf("replay output: %s", out)
	}

	out, err = run(t, "index", "--data", data)
	if err != nil {
		t.Fatalf("index: %v\n%s", err, out)
	}
	if got := strings.Count(out, "solved"); got != 3 {
		t.Fatalf("index lists %d solved runs:\n%s", got, out)
	}
}

func TestBatch_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "ok.json", worldtest.NewLevel().Grid("S.F").JSON(t))
	writeLevel(t, dir, "broken.json", []byte(`{"gameConfig":{"players":"nope"}}`))
	out, err := run(t, "batch", "--record=false", dir)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(out, "total=2 solved=1 unsolvable=0 exhausted=0 failed=1") {
		t.Fatalf("summary: %s", out)
	}
}

func TestPresets_ListsCatalog(t *testing.T) {
	out, err := run(t, "presets", "--record=false")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, name := range []string{"commands_l1_move", "full_toolbox", "loops_l1_basic_movement"} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing preset %s:\n%s", name, out)
		}
	}
}

func TestSolve_UnknownPreset(t *testing.T) {
	dir := t.TempDir()
	path := writeLevel(t, dir, "a.json", worldtest.NewLevel().Grid("S.F").JSON(t))
	if _, err := run(t, "solve", "--record=false", "--preset", "nope", path); err == nil {
		t.Fatalf("expected unknown preset error")
	}
}
