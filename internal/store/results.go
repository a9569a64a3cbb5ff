package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/quizzer/internal/model"
)

// SaveResult appends a test result and returns its ID.
func (s *Store) SaveResult(ctx context.Context, r model.TestResult) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO test_results (student_id, subject, score, total_questions, answers, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		r.StudentID, r.Subject, r.Score, r.TotalQuestions, r.Answers, r.Report, r.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert test result: %w", err)
	}
	return id, nil
}

// ListResults returns all test results, oldest first, with the student's name when known.
func (s *Store) ListResults(ctx context.Context) ([]model.TestResult, error) {
	var results []model.TestResult
	err := s.db.SelectContext(ctx, &results,
		`SELECT r.id,
		        COALESCE(CAST(r.student_id AS TEXT), '') AS student_id,
		        COALESCE(st.name, '') AS student_name,
		        COALESCE(r.subject, '') AS subject,
		        COALESCE(r.score, 0) AS score,
		        COALESCE(r.total_questions, 0) AS total_questions,
		        COALESCE(CAST(r.answers AS TEXT), '') AS answers,
		        COALESCE(r.report, '') AS report,
		        r.created_at
		 FROM test_results r
		 LEFT JOIN students st ON st.id = r.student_id
		 ORDER BY r.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	return results, nil
}

// ResultCount returns the number of stored test results.
func (s *Store) ResultCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM test_results`)
	return count, err
}
