package bank

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pavelanni/quizzer/internal/model"
)

// Bank is an immutable index of questions keyed by unique ID.
// It is safe for concurrent use.
type Bank struct {
	byID      map[string]model.Question
	bySubject map[string][]model.Question
	subjects  []string
}

// New builds a bank from per-subject question lists.
// Duplicate unique IDs keep the last entry.
func New(questions []model.Question) *Bank {
	b := &Bank{
		byID:      make(map[string]model.Question, len(questions)),
		bySubject: make(map[string][]model.Question),
	}
	for _, q := range questions {
		if _, dup := b.byID[q.UniqueID]; dup {
			slog.Warn("duplicate question id, keeping last", "id", q.UniqueID)
			b.removeFromSubject(q.UniqueID)
		}
		b.byID[q.UniqueID] = q
		if _, ok := b.bySubject[q.Subject]; !ok {
			b.subjects = append(b.subjects, q.Subject)
		}
		b.bySubject[q.Subject] = append(b.bySubject[q.Subject], q)
	}
	sort.Strings(b.subjects)
	return b
}

func (b *Bank) removeFromSubject(id string) {
	old := b.byID[id]
	pool := b.bySubject[old.Subject]
	for i, q := range pool {
		if q.UniqueID == id {
			b.bySubject[old.Subject] = append(pool[:i:i], pool[i+1:]...)
			return
		}
	}
}

// Empty returns a bank with no questions.
func Empty() *Bank {
	return New(nil)
}

// Load reads a question file. The format is chosen by extension: .xlsx files
// are read as spreadsheets, everything else as JSON.
func Load(path string) (*Bank, error) {
	var (
		questions []model.Question
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		questions, err = loadXLSX(path)
	default:
		questions, err = loadJSON(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load questions from %s: %w", path, err)
	}
	return New(questions), nil
}

// LoadOrEmpty is Load that degrades to an empty bank on any failure.
func LoadOrEmpty(path string) *Bank {
	b, err := Load(path)
	if err != nil {
		slog.Error("question bank unavailable, serving no questions", "path", path, "error", err)
		return Empty()
	}
	slog.Info("loaded question bank", "path", path, "questions", b.Len(), "subjects", b.Subjects())
	return b
}

// Question returns the question with the given unique ID.
func (b *Bank) Question(id string) (model.Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.byID)
}

// Subjects returns the subject names in sorted order.
func (b *Bank) Subjects() []string {
	return append([]string(nil), b.subjects...)
}

// Sample returns up to count questions of a subject, chosen uniformly at
// random without replacement. A smaller pool is returned whole.
func (b *Bank) Sample(subject string, count int) []model.Question {
	pool := b.bySubject[subject]
	if count <= 0 || len(pool) == 0 {
		return nil
	}
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]model.Question, 0, count)
	for _, i := range rand.Perm(len(pool))[:count] {
		out = append(out, pool[i])
	}
	return out
}

// UniqueID joins a subject and a within-subject ID.
func UniqueID(subject, localID string) string {
	return subject + "_" + localID
}
