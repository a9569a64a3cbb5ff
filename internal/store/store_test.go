package store

import (
	"context"
	"testing"
	"time"

	"github.com/pavelanni/quizzer/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func insertTestStudent(t *testing.T, s *Store, id, name, roll string) {
	t.Helper()
	ok, err := s.InsertStudent(context.Background(), model.Student{ID: id, Name: name, RollNo: roll})
	if err != nil {
		t.Fatalf("InsertStudent: %v", err)
	}
	if !ok {
		t.Fatalf("InsertStudent(%s): unexpected conflict", id)
	}
}

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		dsn         string
		wantDriver  string
		wantDialect Dialect
		wantSource  string
	}{
		{"postgres://u:p@localhost/db", "pgx", DialectPostgres, "postgres://u:p@localhost/db"},
		{"postgresql://localhost/db?sslmode=disable", "pgx", DialectPostgres, "postgresql://localhost/db?sslmode=disable"},
		{":memory:", "sqlite", DialectSQLite, ":memory:"},
		{"sqlite://quiz.db", "sqlite", DialectSQLite, "quiz.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"quiz.db?_pragma=foreign_keys(0)", "sqlite", DialectSQLite, "quiz.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, dialect, source := resolveDSN(tt.dsn)
			if driver != tt.wantDriver || dialect != tt.wantDialect || source != tt.wantSource {
				t.Errorf("resolveDSN(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.dsn, driver, dialect, source, tt.wantDriver, tt.wantDialect, tt.wantSource)
			}
		})
	}
}

func TestNewEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Error("expected error for empty DSN")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestFindStudentNormalized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.FindStudent(ctx, "alice", "7")
	if err != nil {
		t.Fatalf("FindStudent on empty table: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil student, got %+v", st)
	}

	insertTestStudent(t, s, "id-alice", " Alice ", "007")
	insertTestStudent(t, s, "id-zero", "Zed", "000")

	tests := []struct {
		name    string
		nameKey string
		rollKey string
		wantID  string
	}{
		{"exact keys", "alice", "7", "id-alice"},
		{"all zero roll", "zed", "0", "id-zero"},
		{"wrong roll", "alice", "70", ""},
		{"wrong name", "bob", "7", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindStudent(ctx, tt.nameKey, tt.rollKey)
			if err != nil {
				t.Fatalf("FindStudent: %v", err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("expected no match, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Fatalf("expected %s, got %+v", tt.wantID, got)
			}
		})
	}

	got, _ := s.FindStudent(ctx, "alice", "7")
	if got.Name != " Alice " {
		t.Errorf("stored display name should be kept verbatim, got %q", got.Name)
	}
}

func TestInsertStudentConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestStudent(t, s, "first", "Alice", "7")

	ok, err := s.InsertStudent(ctx, model.Student{ID: "second", Name: "  ALICE", RollNo: "0007"})
	if err != nil {
		t.Fatalf("InsertStudent: %v", err)
	}
	if ok {
		t.Fatal("expected conflict on normalized identity")
	}

	count, err := s.StudentCount(ctx)
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 student, got %d", count)
	}
}

func TestGetStudent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestStudent(t, s, "abc", "Asha", "12")

	st, err := s.GetStudent(ctx, "abc")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if st == nil || st.Name != "Asha" || st.RollNo != "12" {
		t.Fatalf("unexpected student: %+v", st)
	}
	if st.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	missing, err := s.GetStudent(ctx, "nope")
	if err != nil {
		t.Fatalf("GetStudent missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown student, got %+v", missing)
	}
}

func TestResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestStudent(t, s, "stu-1", "Ravi", "3")

	results, err := s.ListResults(ctx)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []model.TestResult{
		{StudentID: "stu-1", Subject: "Unified Test", Score: 12, TotalQuestions: 30, Answers: `{"Maths_1":"B"}`, Report: "Good work", CreatedAt: at},
		{StudentID: "stu-1", Subject: "Unified Test", Score: 20, TotalQuestions: 30, Answers: `{}`, Report: "Better"},
	} {
		id, err := s.SaveResult(ctx, r)
		if err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
		if id <= 0 {
			t.Errorf("expected positive id, got %d", id)
		}
	}

	results, err = s.ListResults(ctx)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	first := results[0]
	if first.StudentName != "Ravi" {
		t.Errorf("expected joined student name Ravi, got %q", first.StudentName)
	}
	if first.Score != 12 || first.Answers != `{"Maths_1":"B"}` || first.Report != "Good work" {
		t.Errorf("unexpected first result: %+v", first)
	}
	if !first.CreatedAt.Equal(at) {
		t.Errorf("created_at = %v, want %v", first.CreatedAt, at)
	}
	if results[1].CreatedAt.IsZero() {
		t.Error("expected created_at default for second result")
	}

	count, err := s.ResultCount(ctx)
	if err != nil {
		t.Fatalf("ResultCount: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 results, got %d", count)
	}
}

func TestResultsAreAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := model.TestResult{StudentID: "anon", Subject: "S", Score: 1, TotalQuestions: 30, Answers: "{}", Report: "x"}
	for i := 0; i < 3; i++ {
		if _, err := s.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}
	results, err := s.ListResults(ctx)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 appended results, got %d", len(results))
	}
	if results[0].StudentName != "" {
		t.Errorf("unknown student should have empty name, got %q", results[0].StudentName)
	}
}
