package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/workers"
)

type WorkerRepository struct {
	db *DB
}

func NewWorkerRepository(db *DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// Register upserts by name, rotating the token and forcing the worker online
// with a fresh heartbeat.
func (r *WorkerRepository) Register(ctx context.Context, name, token string, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM workers WHERE name=?;`, name).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE workers SET token=?, status=?, last_heartbeat=? WHERE id=?;`,
			token, string(domain.StatusOnline), fmtTime(now), id)
		if err != nil {
			return 0, err
		}
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO workers(name, token, status, last_heartbeat, created_at) VALUES (?,?,?,?,?);`,
			name, token, string(domain.StatusOnline), fmtTime(now), fmtTime(now))
		if err != nil {
			return 0, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	default:
		return 0, err
	}
	return id, tx.Commit()
}

// Heartbeat fails closed: unknown name or token mismatch returns false and
// changes nothing. A passing heartbeat sets the worker online and refreshes
// last_heartbeat unconditionally.
func (r *WorkerRepository) Heartbeat(ctx context.Context, name, token string, now time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var id int64
	var current string
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, token FROM workers WHERE name=?;`, name).Scan(&id, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if current != token {
		return false, nil
	}
	_, err = r.db.sql.ExecContext(ctx,
		`UPDATE workers SET status=?, last_heartbeat=? WHERE id=?;`,
		string(domain.StatusOnline), fmtTime(now), id)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *WorkerRepository) List(ctx context.Context) ([]*domain.Worker, error) {
	const q = `
SELECT id, name, token, status, last_heartbeat, created_at
FROM workers ORDER BY id DESC;`
	rows, err := r.db.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Worker
	for rows.Next() {
		var w domain.Worker
		var status, created string
		var beat sql.NullString
		if err := rows.Scan(&w.ID, &w.Name, &w.Token, &status, &beat, &created); err != nil {
			return nil, err
		}
		w.Status = domain.Status(status)
		w.LastHeartbeat = parseNullTime(beat)
		w.CreatedAt = parseTime(created)
		out = append(out, &w)
	}
	return out, rows.Err()
}

// CountOnline is the read-time liveness computation: status online AND a
// heartbeat at or after the cutoff.
func (r *WorkerRepository) CountOnline(ctx context.Context, cutoff time.Time) (int, error) {
	const q = `
SELECT COUNT(*) FROM workers
WHERE status=? AND last_heartbeat IS NOT NULL AND last_heartbeat >= ?;`
	var n int
	err := r.db.sql.QueryRowContext(ctx, q, string(domain.StatusOnline), fmtTime(cutoff)).Scan(&n)
	return n, err
}

// SweepStale flips every worker with a null or pre-cutoff heartbeat offline in
// one bulk write and returns the number affected.
func (r *WorkerRepository) SweepStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
UPDATE workers SET status=?
WHERE last_heartbeat IS NULL OR last_heartbeat < ?;`
	res, err := r.db.sql.ExecContext(ctx, q, string(domain.StatusOffline), fmtTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
