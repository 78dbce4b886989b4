package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/gridstatus/core/model"
	corestore "github.com/kilianp07/gridstatus/core/store"
)

// SQLiteStore persists observations to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; also keeps in-memory databases on a single connection
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS observations (
        iso TEXT NOT NULL,
        dataset TEXT NOT NULL,
        market TEXT NOT NULL DEFAULT '',
        location TEXT NOT NULL DEFAULT '',
        interval_start INTEGER NOT NULL,
        interval_end INTEGER NOT NULL,
        fields TEXT NOT NULL,
        PRIMARY KEY(iso, dataset, market, location, interval_start)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append upserts the observations in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, obs []model.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations
        (iso, dataset, market, location, interval_start, interval_end, fields)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(iso, dataset, market, location, interval_start) DO UPDATE SET
            interval_end = excluded.interval_end,
            fields = excluded.fields`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, o := range obs {
		fields, err := json.Marshal(o.Fields)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal fields: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, o.ISO, string(o.Dataset), o.Market, o.Location,
			o.IntervalStart.UnixMilli(), o.IntervalEnd.UnixMilli(), string(fields)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns observations matching q.
func (s *SQLiteStore) Query(ctx context.Context, q corestore.Query) ([]model.Observation, error) {
	var args []any
	where := ` WHERE 1=1`
	if q.ISO != "" {
		where += ` AND iso = ?`
		args = append(args, q.ISO)
	}
	if q.Dataset != "" {
		where += ` AND dataset = ?`
		args = append(args, string(q.Dataset))
	}
	if q.Market != "" {
		where += ` AND market = ?`
		args = append(args, q.Market)
	}
	if q.Location != "" {
		where += ` AND location = ?`
		args = append(args, q.Location)
	}
	if !q.Start.IsZero() {
		where += ` AND interval_start >= ?`
		args = append(args, q.Start.UnixMilli())
	}
	if !q.End.IsZero() {
		where += ` AND interval_start < ?`
		args = append(args, q.End.UnixMilli())
	}
	cols := `SELECT iso, dataset, market, location, interval_start, interval_end, fields FROM observations`
	query := cols + where + ` ORDER BY interval_start, market, location`
	if q.Limit > 0 {
		// newest rows first, re-sorted below
		query = cols + where + ` ORDER BY interval_start DESC, market DESC, location DESC LIMIT ?`
		args = append(args, q.Limit)
	}
	out, err := s.scan(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	corestore.Sort(out)
	return out, nil
}

// Latest returns the most recent observation of every series.
func (s *SQLiteStore) Latest(ctx context.Context, iso string, dataset model.Dataset) ([]model.Observation, error) {
	out, err := s.scan(ctx, `SELECT o.iso, o.dataset, o.market, o.location, o.interval_start, o.interval_end, o.fields
        FROM observations o
        JOIN (SELECT market, location, MAX(interval_start) AS latest
              FROM observations WHERE iso = ? AND dataset = ?
              GROUP BY market, location) l
          ON o.market = l.market AND o.location = l.location AND o.interval_start = l.latest
        WHERE o.iso = ? AND o.dataset = ?`,
		iso, string(dataset), iso, string(dataset))
	if err != nil {
		return nil, err
	}
	corestore.Sort(out)
	return out, nil
}

func (s *SQLiteStore) scan(ctx context.Context, query string, args ...any) ([]model.Observation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Observation
	for rows.Next() {
		var (
			o          model.Observation
			dataset    string
			start, end int64
			fields     string
		)
		if err := rows.Scan(&o.ISO, &dataset, &o.Market, &o.Location, &start, &end, &fields); err != nil {
			return nil, err
		}
		o.Dataset = model.Dataset(dataset)
		o.IntervalStart = time.UnixMilli(start).UTC()
		o.IntervalEnd = time.UnixMilli(end).UTC()
		if err := json.Unmarshal([]byte(fields), &o.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
