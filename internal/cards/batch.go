package cards

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"
)

// Progress reports one finished batch item.
type Progress struct {
	Index int    // 1-based
	Total int
	Note  string
	Asset string // empty on failure
	Err   error
}

// ProgressFunc receives batch progress.
type ProgressFunc func(Progress)

// BatchReport summarizes RenderAll.
type BatchReport struct {
	Exported []Exported  `json:"exported"`
	Failed   []ItemError `json:"failed,omitempty"`
	Skipped  int         `json:"skipped,omitempty"`
}

// RenderAll exports docs one at a time. A failing note is reported and the
// batch moves on. When ctx is cancelled, the note being exported still
// finishes and the remaining ones are counted as skipped.
func (s *Service) RenderAll(ctx context.Context, docs []string, progress ProgressFunc) (BatchReport, error) {
	unlock, err := s.lock()
	if err != nil {
		return BatchReport{}, err
	}
	defer unlock()

	var report BatchReport
	for i, p := range docs {
		if ctx.Err() != nil {
			report.Skipped = len(docs) - i
			s.log.Warn("batch cancelled", "remaining", report.Skipped)
			return report, ctx.Err()
		}

		out, err := s.ExportNote(context.WithoutCancel(ctx), p)
		item := Progress{Index: i + 1, Total: len(docs), Note: p, Asset: out.Asset, Err: err}
		if err != nil {
			s.log.Error("card export failed", "note", p, "error", err)
			report.Failed = append(report.Failed, ItemError{Note: p, Err: err})
		} else {
			report.Exported = append(report.Exported, out)
		}
		if progress != nil {
			progress(item)
		}
	}
	return report, nil
}

// lock takes the vault's batch lock without waiting.
func (s *Service) lock() (unlock func(), err error) {
	fl := flock.New(s.lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring batch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrBatchLocked, s.lockPath)
	}
	return func() { _ = fl.Unlock() }, nil
}
