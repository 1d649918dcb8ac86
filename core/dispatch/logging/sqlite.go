package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS plan_logs (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	ts      INTEGER NOT NULL,
	plan_id TEXT NOT NULL,
	failed  INTEGER NOT NULL DEFAULT 0,
	record  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS plan_logs_ts ON plan_logs (ts);
CREATE INDEX IF NOT EXISTS plan_logs_plan_id ON plan_logs (plan_id);
CREATE TABLE IF NOT EXISTS plan_units (
	log_id INTEGER NOT NULL REFERENCES plan_logs (id),
	unit   TEXT NOT NULL,
	PRIMARY KEY (log_id, unit)
);
CREATE INDEX IF NOT EXISTS plan_units_unit ON plan_units (unit);`

// SQLiteStore keeps plan records in a SQLite database, with the units of
// each plan indexed for the unit filter.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("create schema: %w", err), db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

// Append stores rec and the names of the units it involves.
func (s *SQLiteStore) Append(ctx context.Context, rec LogRecord) (err error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	failed := 0
	if rec.Error != "" {
		failed = 1
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO plan_logs (ts, plan_id, failed, record) VALUES (?, ?, ?, ?)`,
		rec.Timestamp.UnixNano(), rec.PlanID, failed, string(b))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, unit := range recordUnits(rec) {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO plan_units (log_id, unit) VALUES (?, ?)`, id, unit); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns the records matching q ordered by time.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	var (
		where []string
		args  []any
	)
	if !q.Start.IsZero() {
		where = append(where, `ts >= ?`)
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		where = append(where, `ts <= ?`)
		args = append(args, q.End.UnixNano())
	}
	if q.PlanID != "" {
		where = append(where, `plan_id = ?`)
		args = append(args, q.PlanID)
	}
	if q.Unit != "" {
		where = append(where, `id IN (SELECT log_id FROM plan_units WHERE unit = ?)`)
		args = append(args, q.Unit)
	}
	query := `SELECT record FROM plan_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ts, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []LogRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec LogRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode plan log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// recordUnits lists the allocated and requested unit names of rec.
func recordUnits(rec LogRecord) []string {
	seen := make(map[string]bool, len(rec.Request.Powerplants))
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, u := range rec.Units {
		add(u.Name)
	}
	for _, p := range rec.Request.Powerplants {
		add(p.Name)
	}
	return out
}
