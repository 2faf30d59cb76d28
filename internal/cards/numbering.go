package cards

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-md2card/internal/frontmatter"
)

// Assignment is a number given to a note.
type Assignment struct {
	Note   string `json:"note"`
	Number int    `json:"number"`
}

// ItemError is the failure of one note in a batch.
type ItemError struct {
	Note string
	Err  error
}

func (e ItemError) Error() string { return e.Note + ": " + e.Err.Error() }

func (e ItemError) Unwrap() error { return e.Err }

// MarshalJSON writes the error as its message.
func (e ItemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Note  string `json:"note"`
		Error string `json:"error"`
	}{Note: e.Note, Error: e.Err.Error()})
}

// NumberReport summarizes AssignNumbers.
type NumberReport struct {
	Assigned []Assignment `json:"assigned"`
	Failed   []ItemError  `json:"failed,omitempty"`
}

// AssignNumbers numbers every note in docs that has none, continuing after
// the highest number already present in docs. Notes are numbered in the
// order given. Existing numbers are never changed, so a second run assigns
// nothing.
func (s *Service) AssignNumbers(ctx context.Context, docs []string) (NumberReport, error) {
	unlock, err := s.lock()
	if err != nil {
		return NumberReport{}, err
	}
	defer unlock()

	var report NumberReport
	notes := make([]frontmatter.Note, 0, len(docs))
	highest := 0
	for _, p := range docs {
		note, err := s.meta.Get(p)
		if err != nil {
			report.Failed = append(report.Failed, ItemError{Note: p, Err: err})
			continue
		}
		if note.Fields.HasNumber && note.Fields.Number > highest {
			highest = note.Fields.Number
		}
		notes = append(notes, note)
	}

	next := highest + 1
	keys := s.meta.Keys()
	for _, note := range notes {
		if note.Fields.HasNumber {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		assigned := false
		err := s.vault.ProcessFrontmatter(note.Path, func(b *frontmatter.Block) error {
			// The note may have been numbered since it was read.
			if frontmatter.Resolve(*b, note.Path, keys).HasNumber {
				return nil
			}
			b.Set(keys.NumberKey(*b), next)
			assigned = true
			return nil
		})
		s.meta.Invalidate(note.Path)
		if err != nil {
			s.log.Error("numbering failed", "note", note.Path, "error", err)
			report.Failed = append(report.Failed, ItemError{Note: note.Path, Err: fmt.Errorf("%w: %v", ErrPersistenceFailure, err)})
			continue
		}
		if assigned {
			report.Assigned = append(report.Assigned, Assignment{Note: note.Path, Number: next})
			s.log.Info("card numbered", "note", note.Path, "number", next)
			next++
		}
	}
	return report, nil
}
