package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lei/test-results/internal/models"
)

// Compile-time interface check.
var _ RecordStore = (*SQLiteStore)(nil)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS test_runs (
	test_run_id  TEXT PRIMARY KEY,
	suite_name   TEXT,
	environment  TEXT,
	status       TEXT,
	total_tests  INTEGER,
	passed       INTEGER,
	failed       INTEGER,
	triggered_by TEXT,
	created_at   TEXT
)`

// SQLiteStore keeps records in a single SQLite table
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and creates the table if needed
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create test_runs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ready always succeeds once the database is open
func (s *SQLiteStore) Ready() error {
	return nil
}

// Put inserts rec, replacing any row with the same key
func (s *SQLiteStore) Put(ctx context.Context, rec models.TestRunRecord) error {
	id, err := requireID(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO test_runs
			(test_run_id, suite_name, environment, status, total_tests, passed, failed, triggered_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullString(rec.SuiteName),
		nullString(rec.Environment),
		nullString(rec.Status),
		nullInt(rec.TotalTests),
		nullInt(rec.Passed),
		nullInt(rec.Failed),
		nullString(rec.TriggeredBy),
		nullString(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert test run %s: %w", id, err)
	}
	return nil
}

// Scan returns every row in insertion order
func (s *SQLiteStore) Scan(ctx context.Context) ([]models.TestRunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT test_run_id, suite_name, environment, status, total_tests, passed, failed, triggered_by, created_at
		FROM test_runs
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query test runs: %w", err)
	}
	defer rows.Close()

	var records []models.TestRunRecord
	for rows.Next() {
		var (
			id, suite, env, status, trigger, created sql.NullString
			total, passed, failed                    sql.NullInt64
		)
		if err := rows.Scan(&id, &suite, &env, &status, &total, &passed, &failed, &trigger, &created); err != nil {
			return nil, fmt.Errorf("scan test run row: %w", err)
		}
		records = append(records, models.TestRunRecord{
			TestRunID:   fromNullString(id),
			SuiteName:   fromNullString(suite),
			Environment: fromNullString(env),
			Status:      fromNullString(status),
			TotalTests:  fromNullInt(total),
			Passed:      fromNullInt(passed),
			Failed:      fromNullInt(failed),
			TriggeredBy: fromNullString(trigger),
			CreatedAt:   fromNullString(created),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test runs: %w", err)
	}

	return records, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
