package sqlite

import (
	"context"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/joblog"
)

type JobLogRepository struct {
	db *DB
}

func NewJobLogRepository(db *DB) *JobLogRepository {
	return &JobLogRepository{db: db}
}

func (r *JobLogRepository) Append(ctx context.Context, job string, level domain.Level, message string) error {
	const q = `INSERT INTO jobs_log(job, level, msg, created_at) VALUES (?,?,?,?);`
	_, err := r.db.sql.ExecContext(ctx, q, job, string(level), message, fmtTime(time.Now()))
	return err
}

func (r *JobLogRepository) Recent(ctx context.Context, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, job, level, msg, created_at
FROM jobs_log ORDER BY id DESC LIMIT ?;`
	rows, err := r.db.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var level, created string
		if err := rows.Scan(&e.ID, &e.Job, &level, &e.Message, &created); err != nil {
			return nil, err
		}
		e.Level = domain.Level(level)
		e.CreatedAt = parseTime(created)
		out = append(out, &e)
	}
	return out, rows.Err()
}
