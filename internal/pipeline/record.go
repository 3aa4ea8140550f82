package pipeline

import (
	"encoding/json"
	"errors"

	"questsolver/internal/persistence/indexdb"
	"questsolver/internal/persistence/runlog"
	"questsolver/internal/sim/search"
)

// Source describes where a solved level came from and the knobs it was
// solved with.
type Source struct {
	Path          string
	Raw           []byte
	Theme         string
	ToolboxPreset string
	MaxExpansions int
}

// Recorder writes finished runs to the run log and the sqlite index. Either
// sink may be nil.
type Recorder struct {
	Runs  *runlog.Logger
	Index *indexdb.SQLiteIndex
}

// Record stores rep and returns its run id. Run errors other than exhaustion
// are logged with status "error".
func (r *Recorder) Record(rep Report, src Source, runErr error) (runlog.Entry, error) {
	e := runlog.Entry{
		RunID:         runlog.NewRunID(),
		LevelID:       rep.LevelID,
		LevelPath:     src.Path,
		LevelDigest:   rep.Digest,
		Theme:         src.Theme,
		ToolboxPreset: src.ToolboxPreset,
		MaxExpansions: src.MaxExpansions,
		Status:        rep.Status.String(),
		Actions:       rep.Actions,
		ActionsDigest: runlog.ActionsDigest(rep.Actions),
		Blocks:        rep.Blocks,
		Cost:          rep.Cost,
		Expanded:      rep.Expanded,
	}
	if runErr != nil {
		e.Error = runErr.Error()
		if !errors.Is(runErr, search.ErrExhausted) {
			e.Status = "error"
		}
	}
	if json.Valid(src.Raw) {
		e.Level = json.RawMessage(src.Raw)
	}
	if r == nil {
		return e, nil
	}

	if r.Runs != nil {
		var err error
		if e, err = r.Runs.WriteRun(e); err != nil {
			return e, err
		}
	}
	r.Index.RecordRun(indexdb.Run{
		RunID:         e.RunID,
		LevelID:       e.LevelID,
		LevelDigest:   e.LevelDigest,
		Status:        e.Status,
		Actions:       len(e.Actions),
		Blocks:        e.Blocks,
		Cost:          e.Cost,
		Expanded:      e.Expanded,
		ActionsDigest: e.ActionsDigest,
		RecordedAt:    e.RecordedAt,
	})
	return e, nil
}

// Close closes both sinks.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Runs != nil {
		errs = append(errs, r.Runs.Close())
	}
	if r.Index != nil {
		errs = append(errs, r.Index.Close())
	}
	return errors.Join(errs...)
}
