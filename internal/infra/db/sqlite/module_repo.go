package sqlite

import (
	"context"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/modules"
)

type ModuleStatusRepository struct {
	db *DB
}

func NewModuleStatusRepository(db *DB) *ModuleStatusRepository {
	return &ModuleStatusRepository{db: db}
}

// Set upserts the latest state for a module; never an append.
func (r *ModuleStatusRepository) Set(ctx context.Context, module, status, message string) error {
	const q = `
INSERT INTO modules_status(module, status, message, updated_at) VALUES (?,?,?,?)
ON CONFLICT(module) DO UPDATE SET
  status=excluded.status, message=excluded.message, updated_at=excluded.updated_at;`
	_, err := r.db.sql.ExecContext(ctx, q, module, status, message, fmtTime(time.Now()))
	return err
}

func (r *ModuleStatusRepository) List(ctx context.Context) ([]*domain.Status, error) {
	const q = `
SELECT module, status, message, updated_at
FROM modules_status ORDER BY module ASC;`
	rows, err := r.db.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Status
	for rows.Next() {
		var s domain.Status
		var updated string
		if err := rows.Scan(&s.Module, &s.Status, &s.Message, &updated); err != nil {
			return nil, err
		}
		s.UpdatedAt = parseTime(updated)
		out = append(out, &s)
	}
	return out, rows.Err()
}
