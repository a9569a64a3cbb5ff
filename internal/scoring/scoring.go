package scoring

import (
	"strings"

	"github.com/pavelanni/quizzer/internal/model"
)

// DefaultTotalQuestions is the full test length used as the percentage denominator.
const DefaultTotalQuestions = 30

// Lookup resolves a question by unique ID.
type Lookup interface {
	Question(id string) (model.Question, bool)
}

// Classify maps a subject string to its section. Matching is case-sensitive
// and every subject maps to exactly one section.
func Classify(subject string) model.Section {
	switch {
	case strings.Contains(subject, "Math"):
		return model.SectionMaths
	case strings.Contains(subject, "Science") && !strings.Contains(subject, "Social"):
		return model.SectionScience
	case strings.Contains(subject, "Social"):
		return model.SectionSocial
	default:
		return model.SectionGeneral
	}
}

// IsCorrect reports whether a submitted answer matches the correct one.
// Only surrounding whitespace is ignored; case matters.
func IsCorrect(submitted, correct string) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(correct)
}

// Score grades answers against the bank. Unknown question IDs are skipped and
// count toward nothing. expectedTotal is the fixed test length, independent of
// how many answers were submitted.
func Score(bank Lookup, answers map[string]string, expectedTotal int) model.ScoreResult {
	res := model.ScoreResult{
		TotalQuestions: expectedTotal,
		SectionScores: map[model.Section]int{
			model.SectionMaths:   0,
			model.SectionScience: 0,
			model.SectionSocial:  0,
		},
		SectionTotals: map[model.Section]int{
			model.SectionMaths:   0,
			model.SectionScience: 0,
			model.SectionSocial:  0,
		},
	}
	for id, ans := range answers {
		q, ok := bank.Question(id)
		if !ok {
			continue
		}
		sec := Classify(q.Subject)
		res.SectionTotals[sec]++
		if _, ok := res.SectionScores[sec]; !ok {
			res.SectionScores[sec] = 0
		}
		if IsCorrect(ans, q.CorrectAnswer) {
			res.TotalScore++
			res.SectionScores[sec]++
		}
	}
	return res
}

// Tier labels a section percentage. Thresholds are inclusive lower bounds.
func Tier(pct float64) string {
	switch {
	case pct >= 80:
		return "Excellent"
	case pct >= 60:
		return "Good"
	case pct >= 40:
		return "Needs Practice"
	default:
		return "Focus Area"
	}
}

// SectionPercentage returns correct/attempted*100, or 0 when nothing was attempted.
func SectionPercentage(correct, attempted int) float64 {
	if attempted <= 0 {
		return 0
	}
	return float64(correct) / float64(attempted) * 100
}
