package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	corejournal "github.com/kilianp07/invsched/core/journal"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS solve_runs (
        run_id TEXT PRIMARY KEY,
        ts INTEGER,
        instance TEXT,
        jobs INTEGER,
        feasible INTEGER,
        makespan INTEGER,
        oracle_calls INTEGER,
        states_expanded INTEGER,
        duration_ms REAL,
        error TEXT
    );
    CREATE INDEX IF NOT EXISTS solve_runs_instance_ts ON solve_runs(instance, ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the record, replacing a previous run with the same ID.
func (s *SQLiteStore) Append(ctx context.Context, rec corejournal.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO solve_runs
            (run_id, ts, instance, jobs, feasible, makespan, oracle_calls, states_expanded, duration_ms, error)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Timestamp.UnixNano(), rec.Instance, rec.Jobs, rec.Feasible, rec.Makespan,
		rec.OracleCalls, rec.StatesExpanded, rec.DurationMS, rec.Error)
	return err
}

// Query returns records matching q ordered by time.
func (s *SQLiteStore) Query(ctx context.Context, q corejournal.Query) ([]corejournal.Record, error) {
	var args []any
	query := `SELECT run_id, ts, instance, jobs, feasible, makespan, oracle_calls, states_expanded, duration_ms, error
        FROM solve_runs WHERE 1=1`
	if q.Instance != "" {
		query += ` AND instance = ?`
		args = append(args, q.Instance)
	}
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.FeasibleOnly {
		query += ` AND feasible = 1`
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []corejournal.Record
	for rows.Next() {
		var r corejournal.Record
		var ts int64
		var errText sql.NullString
		if err := rows.Scan(&r.RunID, &ts, &r.Instance, &r.Jobs, &r.Feasible, &r.Makespan,
			&r.OracleCalls, &r.StatesExpanded, &r.DurationMS, &errText); err != nil {
			return nil, err
		}
		r.Timestamp = unixNanoUTC(ts)
		r.Error = errText.String
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
