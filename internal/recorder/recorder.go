// Package recorder persists scored submissions on a best-effort basis.
package recorder

import (
	"context"
	"log/slog"

	"github.com/pavelanni/quizzer/internal/model"
)

// Saver appends a test result.
type Saver interface {
	SaveResult(ctx context.Context, r model.TestResult) (int64, error)
}

// Recorder writes test results to an optional store.
type Recorder struct {
	saver Saver
}

// New creates a Recorder. A nil saver disables persistence.
func New(saver Saver) *Recorder {
	return &Recorder{saver: saver}
}

// Save appends r. Without a store it returns model.ErrNotConfigured. Store
// failures are logged and returned for diagnostics; callers never fail the
// request on them.
func (rc *Recorder) Save(ctx context.Context, r model.TestResult) error {
	if rc.saver == nil {
		return model.ErrNotConfigured
	}
	id, err := rc.saver.SaveResult(ctx, r)
	if err != nil {
		slog.Error("failed to record test result", "student_id", r.StudentID, "error", err)
		return &model.TransportError{Op: "save test result", Err: err}
	}
	slog.Info("test result recorded", "id", id, "student_id", r.StudentID, "score", r.Score)
	return nil
}
