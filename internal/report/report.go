// Package report produces the performance report for a scored submission.
// It tries an external text generator once and falls back to a fixed
// template on any failure.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/llm/prompts"
	"github.com/pavelanni/quizzer/internal/model"
)

// DefaultTimeout bounds a single external generation call.
const DefaultTimeout = 30 * time.Second

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source tells where the report text came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Input is what the report is built from.
type Input struct {
	StudentName string
	Score       model.ScoreResult
}

// Outcome is the produced report. Degradation is nil when the external
// generator succeeded.
type Outcome struct {
	Text        string
	Source      Source
	Degradation *model.Degradation
}

// Reporter builds reports.
type Reporter struct {
	gen        Generator
	timeout    time.Duration
	credential string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithCredentialName sets the name reported when no generator is configured.
func WithCredentialName(name string) Option {
	return func(r *Reporter) { r.credential = name }
}

// New creates a Reporter. A nil gen means the generation credential is not
// configured and every report uses the fallback template.
func New(gen Generator, timeout time.Duration, opts ...Option) *Reporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Reporter{gen: gen, timeout: timeout, credential: "GROQ_API_KEY"}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CredentialPresent reports whether an external generator is configured.
func (r *Reporter) CredentialPresent() bool { return r.gen != nil }

// Generate returns a non-empty report. It never fails.
func (r *Reporter) Generate(ctx context.Context, in Input) Outcome {
	name := model.DisplayName(in.StudentName)

	text, err := r.generate(ctx, name, in.Score)
	if err == nil {
		return Outcome{Text: text, Source: SourceGenerated}
	}

	d := model.Degrade(err)
	if d.Reason != model.ReasonNotConfigured {
		slog.Warn("report generation failed, using fallback", "reason", d.Reason, "error", err)
	}
	return Outcome{
		Text:        Fallback(ctx, name, in.Score),
		Source:      SourceFallback,
		Degradation: d,
	}
}

func (r *Reporter) generate(ctx context.Context, name string, score model.ScoreResult) (string, error) {
	if r.gen == nil {
		return "", fmt.Errorf("%s not set: %w", r.credential, model.ErrNotConfigured)
	}

	prompt, err := prompts.Report(prompts.NewReportData(name, score))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generator returned empty text: %w", model.ErrMalformedResponse)
	}
	slog.Debug("report generated", "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}

// Fallback renders the deterministic report sentence, localized when a
// translation is available.
func Fallback(ctx context.Context, name string, score model.ScoreResult) string {
	name = model.DisplayName(name)
	data := map[string]any{
		"Name":  name,
		"Score": score.TotalScore,
		"Total": score.TotalQuestions,
	}
	if s, ok := i18n.Lookup(ctx, i18n.MsgFallbackReport, data); ok && s != "" {
		return s
	}
	return fmt.Sprintf("Well done %s! You scored %d/%d. Keep practicing!", name, score.TotalScore, score.TotalQuestions)
}
