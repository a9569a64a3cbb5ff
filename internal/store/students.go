package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizzer/internal/model"
)

// rollKeyExpr strips leading zeros from roll_no, mapping an all-zero roll to "0".
const rollKeyExpr = `COALESCE(NULLIF(LTRIM(roll_no, '0'), ''), '0')`

// FindStudent returns the student whose trimmed, lowercased name and
// zero-stripped roll number equal the given keys, or nil if none.
func (s *Store) FindStudent(ctx context.Context, nameKey, rollKey string) (*model.Student, error) {
	var st model.Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind(
		`SELECT CAST(id AS TEXT) AS id, name, roll_no, created_at
		 FROM students
		 WHERE LOWER(TRIM(name)) = ? AND `+rollKeyExpr+` = ?
		 ORDER BY created_at
		 LIMIT 1`),
		nameKey, rollKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// InsertStudent stores a new student. It reports false without error when a
// student with the same normalized identity already exists.
func (s *Store) InsertStudent(ctx context.Context, st model.Student) (bool, error) {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO students (id, name, roll_no, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`),
		st.ID, st.Name, st.RollNo, st.CreatedAt,
	)
	if err != nil {
		slog.Error("failed to create student", "name", st.Name, "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	slog.Info("created student", "id", st.ID, "name", st.Name)
	return true, nil
}

// GetStudent returns a student by ID, or nil if none.
func (s *Store) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	if s.dialect == DialectPostgres {
		if _, err := uuid.Parse(id); err != nil {
			return nil, nil
		}
	}
	var st model.Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind(
		`SELECT CAST(id AS TEXT) AS id, name, roll_no, created_at FROM students WHERE id = ?`), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// StudentCount returns the total number of students.
func (s *Store) StudentCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`)
	return count, err
}
