// Package store reads test runs from the SQLite database that CI ingest
// jobs populate. It implements domain.RunReader.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/reductor/reductor/internal/domain"
)

// Schema is the DDL expected by the reader. Ingest jobs run it before
// loading coverage and test results.
const Schema = `
CREATE TABLE IF NOT EXISTS test_runs (
	run_id     TEXT PRIMARY KEY,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tests (
	run_id           TEXT NOT NULL REFERENCES test_runs(run_id),
	test_id          TEXT NOT NULL,
	path             TEXT NOT NULL DEFAULT '',
	method           TEXT NOT NULL DEFAULT '',
	exec_time_ms     INTEGER,
	recent_fail_rate REAL,
	source_text      TEXT,
	PRIMARY KEY (run_id, test_id)
);

CREATE TABLE IF NOT EXISTS coverage_lines (
	run_id  TEXT NOT NULL,
	test_id TEXT NOT NULL,
	file    TEXT NOT NULL,
	line    INTEGER NOT NULL,
	FOREIGN KEY (run_id, test_id) REFERENCES tests(run_id, test_id)
);

CREATE INDEX IF NOT EXISTS idx_coverage_by_test ON coverage_lines(run_id, test_id);
`

// SQLiteReader implements domain.RunReader over a SQLite file.
type SQLiteReader struct {
	db *sql.DB
}

// Open opens the database at path. The file must already exist and carry
// the reader schema.
func Open(path string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	return &SQLiteReader{db: db}, nil
}

// NewSQLiteReader wraps an existing database handle; the caller keeps
// ownership of the handle.
func NewSQLiteReader(db *sql.DB) *SQLiteReader {
	return &SQLiteReader{db: db}
}

// Close releases the underlying handle.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}

// Info returns the run's progress-reporting counts. An unknown run is a
// StoreError.
func (r *SQLiteReader) Info(ctx context.Context, runID string) (domain.RunInfo, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_runs WHERE run_id = ?`, runID).Scan(&exists)
	if err != nil {
		return domain.RunInfo{}, &domain.StoreError{RunID: runID, Cause: err}
	}
	if exists == 0 {
		return domain.RunInfo{}, &domain.StoreError{RunID: runID, Cause: errors.New("run not found")}
	}

	info := domain.RunInfo{RunID: runID}
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tests WHERE run_id = ?`, runID).Scan(&info.TestCount)
	if err != nil {
		return domain.RunInfo{}, &domain.StoreError{RunID: runID, Cause: err}
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT file) FROM coverage_lines WHERE run_id = ?`, runID).
		Scan(&info.CoverageLineCount, &info.UniqueFiles)
	if err != nil {
		return domain.RunInfo{}, &domain.StoreError{RunID: runID, Cause: err}
	}
	return info, nil
}

// Tests returns the run's full test batch, buffered, in stable test_id
// order.
func (r *SQLiteReader) Tests(ctx context.Context, runID string) ([]domain.TestRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT test_id, path, method, exec_time_ms, recent_fail_rate, source_text
		FROM tests WHERE run_id = ? ORDER BY test_id`, runID)
	if err != nil {
		return nil, &domain.StoreError{RunID: runID, Cause: err}
	}
	defer rows.Close()

	var tests []domain.TestRecord
	index := make(map[string]int)
	for rows.Next() {
		var (
			rec      domain.TestRecord
			execMs   sql.NullInt64
			failRate sql.NullFloat64
			source   sql.NullString
		)
		if err := rows.Scan(&rec.TestID, &rec.Path, &rec.Method, &execMs, &failRate, &source); err != nil {
			return nil, &domain.StoreError{RunID: runID, Cause: err}
		}
		rec.ExecTimeMs = execMs.Int64
		rec.RecentFailRate = failRate.Float64
		rec.SourceText = source.String
		index[rec.TestID] = len(tests)
		tests = append(tests, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{RunID: runID, Cause: err}
	}

	if err := r.loadCoverage(ctx, runID, tests, index); err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *SQLiteReader) loadCoverage(ctx context.Context, runID string, tests []domain.TestRecord, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT test_id, file, line
		FROM coverage_lines WHERE run_id = ? ORDER BY test_id, file, line`, runID)
	if err != nil {
		return &domain.StoreError{RunID: runID, Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			testID string
			line   domain.CoverageLine
		)
		if err := rows.Scan(&testID, &line.File, &line.Line); err != nil {
			return &domain.StoreError{RunID: runID, Cause: err}
		}
		if i, ok := index[testID]; ok {
			tests[i].CoverageLines = append(tests[i].CoverageLines, line)
		}
	}
	if err := rows.Err(); err != nil {
		return &domain.StoreError{RunID: runID, Cause: err}
	}
	return nil
}
