package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/bounty"
)

type PlatformRepository struct {
	db *DB
}

func NewPlatformRepository(db *DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// Upsert keyed by name: an existing platform has its mutable fields
// overwritten in place (created_at included, matching the write timestamp)
// instead of inserting a duplicate.
func (r *PlatformRepository) Upsert(ctx context.Context, name, baseURL, apiKey string, enabled bool) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := fmtTime(time.Now())
	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM bounty_platforms WHERE name=?;`, name).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE bounty_platforms SET base_url=?, api_key=?, enabled=?, created_at=? WHERE id=?;`,
			baseURL, apiKey, boolToInt(enabled), now, id)
		if err != nil {
			return 0, err
		}
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bounty_platforms(name, base_url, api_key, enabled, created_at) VALUES (?,?,?,?,?);`,
			name, baseURL, apiKey, boolToInt(enabled), now)
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

func (r *PlatformRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := r.db.sql.ExecContext(ctx,
		`UPDATE bounty_platforms SET enabled=? WHERE id=?;`, boolToInt(enabled), id)
	return err
}

func (r *PlatformRepository) List(ctx context.Context) ([]*domain.Platform, error) {
	const q = `
SELECT id, name, base_url, api_key, enabled, created_at
FROM bounty_platforms ORDER BY id DESC;`
	rows, err := r.db.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Platform
	for rows.Next() {
		var p domain.Platform
		var enabled int
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.BaseURL, &p.APIKey, &enabled, &created); err != nil {
			return nil, err
		}
		p.Enabled = enabled != 0
		p.CreatedAt = parseTime(created)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
