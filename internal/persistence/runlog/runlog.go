// Package runlog records every solve as a compressed JSON line so that runs
// can be audited and replayed later.
package runlog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const filePrefix = "runs"

// Entry is one logged solve. Level holds the exact level bytes that were
// solved.
type Entry struct {
	RunID         string          `json:"run_id"`
	RecordedAt    time.Time       `json:"recorded_at"`
	LevelID       string          `json:"level_id,omitempty"`
	LevelPath     string          `json:"level_path,omitempty"`
	LevelDigest   string          `json:"level_digest"`
	Theme         string          `json:"theme,omitempty"`
	ToolboxPreset string          `json:"toolbox_preset,omitempty"`
	MaxExpansions int             `json:"max_expansions,omitempty"`
	Status        string          `json:"status"`
	Actions       []string        `json:"actions,omitempty"`
	ActionsDigest string          `json:"actions_digest"`
	Blocks        int             `json:"blocks,omitempty"`
	Cost          int             `json:"cost,omitempty"`
	Expanded      int             `json:"expanded"`
	Error         string          `json:"error,omitempty"`
	Level         json.RawMessage `json:"level,omitempty"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string { return uuid.NewString() }

// ActionsDigest is the sha256 of the newline-joined action tokens.
func ActionsDigest(actions []string) string {
	sum := sha256.Sum256([]byte(strings.Join(actions, "\n")))
	return hex.EncodeToString(sum[:])
}

// Logger writes run entries under <dir>/runs.
type Logger struct{ w *JSONLZstdWriter }

func NewLogger(dataDir string) *Logger {
	return &Logger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "runs"), filePrefix)}
}

// WriteRun fills in RunID, RecordedAt and ActionsDigest when missing and
// appends e.
func (l *Logger) WriteRun(e Entry) (Entry, error) {
	if e.RunID == "" {
		e.RunID = NewRunID()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	if e.ActionsDigest == "" {
		e.ActionsDigest = ActionsDigest(e.Actions)
	}
	if err := l.w.Write(e); err != nil {
		return e, err
	}
	return e, nil
}

func (l *Logger) Close() error { return l.w.Close() }

// ReadDir decodes every run file under dir, oldest file first, in the order
// entries were written.
func ReadDir(dir string) ([]Entry, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".jsonl.zst") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var out []Entry
	for _, p := range files {
		entries, err := readFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, entries...)
	}
	return out, nil
}

func readFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	var out []Entry
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
