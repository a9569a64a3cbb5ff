// Package submission runs the grading pipeline for one answer sheet:
// score, resolve the student's name, write a report, record the result.
package submission

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/recorder"
	"github.com/pavelanni/quizzer/internal/report"
	"github.com/pavelanni/quizzer/internal/scoring"
)

// DefaultSubject labels results submitted without a subject.
const DefaultSubject = "Unified Test"

// NameLookup finds a student by ID. It returns nil, nil when no student matches.
type NameLookup interface {
	GetStudent(ctx context.Context, id string) (*model.Student, error)
}

// Debug exposes which optional dependencies degraded during a submission.
type Debug struct {
	GroqKeyPresent bool    `json:"groq_key_present"`
	GroqError      *string `json:"groq_error"`
	DBError        *string `json:"db_error"`
}

// Result is the response to a submission.
type Result struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Report     string  `json:"report"`
	Debug      Debug   `json:"debug"`
}

// Config holds the pipeline parameters.
type Config struct {
	TotalQuestions int
	DBTimeout      time.Duration
}

// Service grades submissions.
type Service struct {
	bank     scoring.Lookup
	names    NameLookup
	reporter *report.Reporter
	recorder *recorder.Recorder
	cfg      Config
}

// New creates a Service. names may be nil when no store is configured.
func New(bank scoring.Lookup, names NameLookup, reporter *report.Reporter, rec *recorder.Recorder, cfg Config) *Service {
	if cfg.TotalQuestions <= 0 {
		cfg.TotalQuestions = scoring.DefaultTotalQuestions
	}
	if cfg.DBTimeout <= 0 {
		cfg.DBTimeout = 5 * time.Second
	}
	return &Service{bank: bank, names: names, reporter: reporter, recorder: rec, cfg: cfg}
}

// Submit grades sub and returns best-effort results. It never fails; store
// and generator problems are reported in Result.Debug.
func (s *Service) Submit(ctx context.Context, sub model.Submission) Result {
	score := scoring.Score(s.bank, sub.Answers, s.cfg.TotalQuestions)

	var dbDeg *model.Degradation
	name, err := s.studentName(ctx, sub.StudentID)
	if err != nil {
		dbDeg = model.Degrade(err)
	}

	out := s.reporter.Generate(ctx, report.Input{StudentName: name, Score: score})

	if err := s.record(ctx, sub, score, out.Text); err != nil && dbDeg == nil {
		dbDeg = model.Degrade(err)
	}

	return Result{
		Score:      score.TotalScore,
		Total:      score.TotalQuestions,
		Percentage: score.Percentage(),
		Report:     out.Text,
		Debug: Debug{
			GroqKeyPresent: s.reporter.CredentialPresent(),
			GroqError:      out.Degradation.Message(),
			DBError:        dbMessage(dbDeg),
		},
	}
}

func (s *Service) studentName(ctx context.Context, id string) (string, error) {
	if s.names == nil {
		return model.DefaultStudentName, model.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.DefaultStudentName, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBTimeout)
	defer cancel()

	st, err := s.names.GetStudent(ctx, id)
	if err != nil {
		slog.Warn("student name lookup failed", "student_id", id, "error", err)
		return model.DefaultStudentName, &model.TransportError{Op: "get student", Err: err}
	}
	if st == nil {
		return model.DefaultStudentName, nil
	}
	return model.DisplayName(st.Name), nil
}

func (s *Service) record(ctx context.Context, sub model.Submission, score model.ScoreResult, text string) error {
	answers := sub.Answers
	if answers == nil {
		answers = model.Answers{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	subject := strings.TrimSpace(sub.Subject)
	if subject == "" {
		subject = DefaultSubject
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBTimeout)
	defer cancel()

	return s.recorder.Save(ctx, model.TestResult{
		StudentID:      sub.StudentID,
		Subject:        subject,
		Score:          score.TotalScore,
		TotalQuestions: score.TotalQuestions,
		Answers:        string(raw),
		Report:         text,
	})
}

func dbMessage(d *model.Degradation) *string {
	if d == nil {
		return nil
	}
	if d.Reason == model.ReasonNotConfigured {
		msg := "database not configured"
		return &msg
	}
	return d.Message()
}
