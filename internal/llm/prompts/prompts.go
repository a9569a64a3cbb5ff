package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/scoring"
)

//go:embed report.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Parse(reportSource))

// SectionLine is one row of the section-wise breakdown.
type SectionLine struct {
	Section   model.Section
	Correct   int
	Attempted int
}

// Percentage returns the share of attempted questions answered correctly.
func (l SectionLine) Percentage() float64 {
	return scoring.SectionPercentage(l.Correct, l.Attempted)
}

// String renders "Maths: 7/10 (70%) - Good".
func (l SectionLine) String() string {
	pct := l.Percentage()
	return fmt.Sprintf("%s: %d/%d (%.0f%%) - %s", l.Section, l.Correct, l.Attempted, pct, scoring.Tier(pct))
}

// ReportData holds template data for the performance report prompt.
type ReportData struct {
	Name       string
	Score      int
	Total      int
	Percentage float64
	Sections   []SectionLine
}

// NewReportData builds prompt data from a score. Sections follow the fixed
// report order and only include sections present in the result.
func NewReportData(name string, res model.ScoreResult) ReportData {
	d := ReportData{
		Name:       name,
		Score:      res.TotalScore,
		Total:      res.TotalQuestions,
		Percentage: res.Percentage(),
	}
	for _, sec := range model.Sections {
		correct, ok := res.SectionScores[sec]
		if !ok {
			continue
		}
		d.Sections = append(d.Sections, SectionLine{
			Section:   sec,
			Correct:   correct,
			Attempted: res.SectionTotals[sec],
		})
	}
	return d
}

// Report renders the performance report prompt.
func Report(d ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render report prompt: %w", err)
	}
	return buf.String(), nil
}
