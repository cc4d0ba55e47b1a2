package sqlite

import (
	"context"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
)

type FindingRepository struct {
	db *DB
}

func NewFindingRepository(db *DB) *FindingRepository {
	return &FindingRepository{db: db}
}

// Add insert satu finding, append-only.
func (r *FindingRepository) Add(ctx context.Context, title string, severity domain.Severity, details string) (int64, error) {
	const q = `INSERT INTO findings(title, severity, details, created_at) VALUES (?,?,?,?);`
	res, err := r.db.sql.ExecContext(ctx, q, title, string(severity), details, fmtTime(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns the newest findings, newest first.
func (r *FindingRepository) Recent(ctx context.Context, limit int) ([]*domain.Finding, error) {
	if limit <= 0 {
		limit = 25
	}
	const q = `
SELECT id, title, severity, details, created_at
FROM findings ORDER BY id DESC LIMIT ?;`
	rows, err := r.db.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Finding
	for rows.Next() {
		var f domain.Finding
		var sev, created string
		if err := rows.Scan(&f.ID, &f.Title, &sev, &f.Details, &created); err != nil {
			return nil, err
		}
		f.Severity = domain.Severity(sev)
		f.CreatedAt = parseTime(created)
		out = append(out, &f)
	}
	return out, rows.Err()
}
