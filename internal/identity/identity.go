// Package identity matches or registers students by name and roll number.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pavelanni/quizzer/internal/model"
)

// StudentStore is the persistence the resolver needs.
type StudentStore interface {
	FindStudent(ctx context.Context, nameKey, rollKey string) (*model.Student, error)
	InsertStudent(ctx context.Context, st model.Student) (bool, error)
}

// Identity is the outcome of a login.
type Identity struct {
	Status    model.IdentityStatus `json:"msg"`
	StudentID string               `json:"student_id"`
	Name      string               `json:"name"`
}

// Resolver resolves (name, roll number) pairs to student identities.
type Resolver struct {
	store StudentStore
	newID func() string
}

// New creates a resolver. A nil store runs without persistence.
func New(store StudentStore) *Resolver {
	return &Resolver{store: store, newID: func() string { return uuid.NewString() }}
}

// NormalizeName trims and lowercases a name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeRoll trims a roll number and strips leading zeros. An all-zero
// or empty roll number becomes "0".
func NormalizeRoll(roll string) string {
	r := strings.TrimLeft(strings.TrimSpace(roll), "0")
	if r == "" {
		return "0"
	}
	return r
}

// Resolve returns the existing student matching the normalized inputs, or
// registers a new one. Without a usable store it returns a synthetic
// identity that is not persisted.
func (r *Resolver) Resolve(ctx context.Context, name, roll string) Identity {
	display := strings.TrimSpace(name)
	if r.store == nil {
		return r.synthetic(display)
	}

	id, err := r.resolve(ctx, display, NormalizeName(name), NormalizeRoll(roll))
	if err != nil {
		slog.Warn("student store unavailable, using synthetic identity", "error", err)
		return r.synthetic(display)
	}
	return id
}

func (r *Resolver) resolve(ctx context.Context, display, nameKey, rollKey string) (Identity, error) {
	st, err := r.store.FindStudent(ctx, nameKey, rollKey)
	if err != nil {
		return Identity{}, &model.TransportError{Op: "find student", Err: err}
	}
	if st != nil {
		return Identity{Status: model.StatusLoggedIn, StudentID: st.ID, Name: st.Name}, nil
	}

	newStudent := model.Student{ID: r.newID(), Name: display, RollNo: rollKey}
	created, err := r.store.InsertStudent(ctx, newStudent)
	if err != nil {
		return Identity{}, &model.TransportError{Op: "insert student", Err: err}
	}
	if created {
		return Identity{Status: model.StatusRegistered, StudentID: newStudent.ID, Name: display}, nil
	}

	// A concurrent registration won the unique index; use its row.
	st, err = r.store.FindStudent(ctx, nameKey, rollKey)
	if err != nil {
		return Identity{}, &model.TransportError{Op: "refetch student", Err: err}
	}
	if st == nil {
		return Identity{}, fmt.Errorf("student %q conflicted but was not found: %w", nameKey, model.ErrNotFound)
	}
	return Identity{Status: model.StatusLoggedIn, StudentID: st.ID, Name: st.Name}, nil
}

func (r *Resolver) synthetic(display string) Identity {
	return Identity{Status: model.StatusNoDB, StudentID: r.newID(), Name: display}
}
