package recorder

import (
	"context"
	"errors"
	"testing"

	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestSaveWithoutStore(t *testing.T) {
	err := New(nil).Save(context.Background(), model.TestResult{StudentID: "x"})
	if !errors.Is(err, model.ErrNotConfigured) {
		t.Fatalf("Save without store = %v, want ErrNotConfigured", err)
	}
}

func TestSavePersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := model.Student{ID: "3f1c9a2e-0000-4000-8000-000000000001", Name: "Asha", RollNo: "7"}
	if _, err := s.InsertStudent(ctx, st); err != nil {
		t.Fatalf("InsertStudent: %v", err)
	}

	r := model.TestResult{
		StudentID:      st.ID,
		Subject:        "Unified Entrance Test",
		Score:          12,
		TotalQuestions: 30,
		Answers:        `{"Maths_1":"4"}`,
		Report:         "Well done Asha! You scored 12/30. Keep practicing!",
	}
	if err := New(s).Save(ctx, r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.ListResults(ctx)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Score != 12 || got[0].Report != r.Report || got[0].StudentName != "Asha" {
		t.Errorf("unexpected stored result: %+v", got[0])
	}
}

type failingSaver struct{}

func (failingSaver) SaveResult(context.Context, model.TestResult) (int64, error) {
	return 0, errors.New("disk full")
}

func TestSaveFailure(t *testing.T) {
	err := New(failingSaver{}).Save(context.Background(), model.TestResult{})
	var te *model.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if model.Degrade(err).Reason != model.ReasonTransportFailure {
		t.Errorf("reason = %s", model.Degrade(err).Reason)
	}
}
