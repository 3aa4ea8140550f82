package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"questsolver/internal/sim/catalogs"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan Run, 1)}
	s.RecordRun(Run{RunID: "a"})
	s.RecordRun(Run{RunID: "b"})

	st := s.Stats()
	if st.DropRunTotal != 1 {
		t.Fatalf("DropRunTotal=%d want=1", st.DropRunTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RecordAndQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "index", "runs.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	idx.RecordRun(Run{RunID: "r1", LevelID: "l1", LevelDigest: "d1", Status: "solved", Actions: 7, Blocks: 2, Cost: 70, Expanded: 9, ActionsDigest: "x", RecordedAt: base})
	idx.RecordRun(Run{RunID: "r2", LevelID: "l2", LevelDigest: "d2", Status: "unsolvable", RecordedAt: base.Add(time.Minute)})
	idx.RecordRun(Run{RunID: "r3", LevelID: "l1", LevelDigest: "d1", Status: "solved", Actions: 7, Blocks: 2, Cost: 70, RecordedAt: base.Add(2 * time.Minute)})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := idx.Stats(); st.WrittenTotal != 3 || st.WriteErrTotal != 0 {
		t.Fatalf("stats: %+v", st)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	all, err := idx.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(all) != 3 || all[0].RunID != "r3" || all[2].RunID != "r1" {
		t.Fatalf("order: %+v", all)
	}
	if !all[2].RecordedAt.Equal(base) || all[2].Cost != 70 || all[2].Expanded != 9 {
		t.Fatalf("row: %+v", all[2])
	}
	limited, err := idx.Runs(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v err=%v", limited, err)
	}
	byLevel, err := idx.RunsForLevel(ctx, "d1")
	if err != nil {
		t.Fatalf("by level: %v", err)
	}
	if len(byLevel) != 2 || byLevel[0].RunID != "r3" {
		t.Fatalf("by level: %+v", byLevel)
	}
}

func TestSQLiteIndex_UpsertCatalog(t *testing.T) {
	defer goleak.VerifyNone(t)

	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	cat, err := catalogs.Default()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	ctx := context.Background()
	if err := idx.UpsertCatalog(ctx, cat); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok, err := idx.CatalogDigest(ctx, "toolboxes")
	if err != nil || !ok || got != cat.Digest {
		t.Fatalf("digest: got %q ok=%v err=%v want %q", got, ok, err, cat.Digest)
	}
	p, _ := cat.Get("full_toolbox")
	got, ok, err = idx.CatalogDigest(ctx, "toolbox:full_toolbox")
	if err != nil || !ok || got != p.Digest {
		t.Fatalf("preset digest: got %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, err := idx.CatalogDigest(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing: ok=%v err=%v", ok, err)
	}
}
