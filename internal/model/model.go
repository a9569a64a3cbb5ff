package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Section is a coarse subject grouping used for score aggregation.
type Section string

const (
	SectionMaths   Section = "Maths"
	SectionScience Section = "Science"
	SectionSocial  Section = "Social"
	SectionGeneral Section = "General"
)

// Sections lists every section in report order.
var Sections = []Section{SectionMaths, SectionScience, SectionSocial, SectionGeneral}

// IdentityStatus reports how a login request was resolved.
type IdentityStatus string

const (
	StatusLoggedIn   IdentityStatus = "Logged in"
	StatusRegistered IdentityStatus = "Registered"
	StatusNoDB       IdentityStatus = "No DB"
)

// Question is an immutable question bank entry.
type Question struct {
	UniqueID      string   `json:"unique_id"`
	Subject       string   `json:"subject"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Answers maps a question unique ID to the submitted answer.
type Answers map[string]string

// UnmarshalJSON accepts any JSON object. String values are kept as is,
// numbers and booleans are kept as their literal text, everything else is dropped.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Answers, len(raw))
	for id, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 {
			continue
		}
		switch v[0] {
		case '"':
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[id] = s
			}
		case 'n', '{', '[':
			// null, objects and arrays carry no usable answer
		default:
			out[id] = string(v)
		}
	}
	*a = out
	return nil
}

// Submission is a transient answer sheet for one request.
type Submission struct {
	StudentID string  `json:"student_id"`
	Subject   string  `json:"subject"`
	Answers   Answers `json:"answers"`
}

// ScoreResult holds total and per-section correctness of a submission.
type ScoreResult struct {
	TotalScore     int
	TotalQuestions int
	SectionScores  map[Section]int
	SectionTotals  map[Section]int
}

// Percentage is always computed against TotalQuestions, not the number answered.
func (r ScoreResult) Percentage() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.TotalScore) / float64(r.TotalQuestions) * 100
}

// Student is a persisted student identity.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	RollNo    string    `db:"roll_no" json:"roll_no"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TestResult is an append-only record of one submission.
type TestResult struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	StudentName    string    `db:"student_name" json:"student_name,omitempty"`
	Subject        string    `db:"subject" json:"subject"`
	Score          int       `db:"score" json:"score"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	Answers        string    `db:"answers" json:"answers"`
	Report         string    `db:"report" json:"report"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	Subjects       []string      `validate:"min=1,dive,required"`
	PerSubject     int           `validate:"min=1"`
	TotalQuestions int           `validate:"min=1"`
	TestLabel      string        `validate:"required"`
	LLMTimeout     time.Duration `validate:"gt=0"`
	DBTimeout      time.Duration `validate:"gt=0"`
}

// DefaultStudentName is used in reports when the student's name is unknown.
const DefaultStudentName = "Student"

// DisplayName returns a trimmed name or DefaultStudentName.
func DisplayName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultStudentName
}
