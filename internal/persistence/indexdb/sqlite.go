// Package indexdb keeps a queryable sqlite index of solve runs. The compressed
// run logs stay the source of truth; the index may drop rows under load.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"questsolver/internal/sim/catalogs"
)

// Run is one indexed solve.
type Run struct {
	RunID         string
	LevelID       string
	LevelDigest   string
	Status        string
	Actions       int
	Blocks        int
	Cost          int
	Expanded      int
	ActionsDigest string
	RecordedAt    time.Time
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	DropRunTotal  uint64
	WriteErrTotal uint64
	WrittenTotal  uint64
}

type SQLiteIndex struct {
	db *sql.DB

	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun  atomic.Uint64
	writeErr atomic.Uint64
	written  atomic.Uint64
}

const defaultQueue = 4096

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan Run, defaultQueue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			level_id TEXT NOT NULL,
			level_digest TEXT NOT NULL,
			status TEXT NOT NULL,
			actions INTEGER NOT NULL,
			blocks INTEGER NOT NULL,
			cost INTEGER NOT NULL,
			expanded INTEGER NOT NULL,
			actions_digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(level_digest, recorded_at);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains queued runs and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun queues r for the writer goroutine. It never blocks; when the
// queue is full the row is dropped and counted.
func (s *SQLiteIndex) RecordRun(r Run) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	select {
	case s.ch <- r:
	default:
		s.dropRun.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropRunTotal:  s.dropRun.Load(),
		WriteErrTotal: s.writeErr.Load(),
		WrittenTotal:  s.written.Load(),
	}
}

// UpsertCatalog stores the toolbox presets so that indexed runs can be
// traced back to the vocabulary they were compiled against.
func (s *SQLiteIndex) UpsertCatalog(ctx context.Context, cat *catalogs.ToolboxCatalog) error {
	if s == nil || cat == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	presets := make([]catalogs.Preset, 0, len(cat.ByName))
	for _, p := range cat.ByName {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	all, err := json.Marshal(presets)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, "toolboxes", cat.Digest, string(all), now); err != nil {
		return err
	}
	for _, p := range presets {
		b, err := json.Marshal(p.Toolbox)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, "toolbox:"+p.Name, p.Digest, string(b), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CatalogDigest returns the stored digest for name.
func (s *SQLiteIndex) CatalogDigest(ctx context.Context, name string) (string, bool, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name = ?`, name).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}

// Runs lists the most recent runs first. limit <= 0 means no limit.
func (s *SQLiteIndex) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT run_id,level_id,level_digest,status,actions,blocks,cost,expanded,actions_digest,recorded_at
		FROM runs ORDER BY recorded_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, q, args...)
}

// RunsForLevel lists runs of the level with the given content digest, most
// recent first.
func (s *SQLiteIndex) RunsForLevel(ctx context.Context, digest string) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT run_id,level_id,level_digest,status,actions,blocks,cost,expanded,actions_digest,recorded_at
		FROM runs WHERE level_digest = ? ORDER BY recorded_at DESC, run_id`, digest)
}

func (s *SQLiteIndex) queryRuns(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var at string
		if err := rows.Scan(&r.RunID, &r.LevelID, &r.LevelDigest, &r.Status, &r.Actions, &r.Blocks, &r.Cost, &r.Expanded, &r.ActionsDigest, &at); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			r.RecordedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	insertRun, err := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,level_id,level_digest,status,actions,blocks,cost,expanded,actions_digest,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		insertRun = nil
	}
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.writeErr.Add(1)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		// Commit eagerly once the queue drains.
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil || insertRun == nil {
			s.writeErr.Add(1)
			continue
		}
		if _, err := tx.Stmt(insertRun).Exec(
			r.RunID,
			r.LevelID,
			r.LevelDigest,
			r.Status,
			r.Actions,
			r.Blocks,
			r.Cost,
			r.Expanded,
			r.ActionsDigest,
			r.RecordedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			s.writeErr.Add(1)
			rollback()
			continue
		}
		opCount++
		s.written.Add(1)
		flushIfNeeded()
	}

	commit()
}
