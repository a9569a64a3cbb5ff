package store

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL backend behind a Store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

// New opens a store for dsn. postgres:// and postgresql:// URLs use pgx;
// anything else is a SQLite path, optionally prefixed with sqlite://.
// The connection is not checked; call Ping for that.
func New(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}
	driver, dialect, source := resolveDSN(dsn)
	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
	}
	return &Store{db: db, dialect: dialect}, nil
}

func resolveDSN(dsn string) (driver string, dialect Dialect, source string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", DialectPostgres, dsn
	case strings.HasPrefix(lower, "sqlite://"):
		dsn = dsn[len("sqlite://"):]
	}
	if dsn != ":memory:" && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return "sqlite", DialectSQLite, dsn
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		roll_no TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS students_identity_idx ON students (
		(LOWER(TRIM(name))),
		(COALESCE(NULLIF(LTRIM(roll_no, '0'), ''), '0'))
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id SERIAL PRIMARY KEY,
		student_id UUID REFERENCES students(id),
		subject TEXT,
		score INTEGER,
		total_questions INTEGER,
		answers JSONB,
		report TEXT,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		roll_no TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS students_identity_idx ON students (
		lower(trim(name)),
		coalesce(nullif(ltrim(roll_no, '0'), ''), '0')
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT REFERENCES students(id),
		subject TEXT,
		score INTEGER,
		total_questions INTEGER,
		answers TEXT,
		report TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates the students and test_results tables if absent.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
