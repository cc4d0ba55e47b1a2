package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/bounty"
)

type TargetRepository struct {
	db *DB
}

func NewTargetRepository(db *DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// Enqueue is idempotent per (platformID, target): a row that already exists,
// whatever its current status, is returned as-is with queued=false.
func (r *TargetRepository) Enqueue(ctx context.Context, platformID int64, target, scope string) (int64, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM bounty_targets WHERE platform_id=? AND target=?;`,
		platformID, target).Scan(&id)
	switch {
	case err == nil:
		return id, false, tx.Commit()
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bounty_targets(platform_id, target, scope, status, created_at) VALUES (?,?,?,?,?);`,
			platformID, target, scope, string(domain.StatusQueued), fmtTime(time.Now()))
		if err != nil {
			return 0, false, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, false, err
		}
		return id, true, tx.Commit()
	default:
		return 0, false, err
	}
}

// PopNext selects the oldest queued target and flips it to scanning in one
// atomic step, so two concurrent pops never receive the same row. Returns
// (nil, nil) when nothing is queued.
func (r *TargetRepository) PopNext(ctx context.Context) (*domain.Target, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
SELECT id, platform_id, target, scope, status, last_scanned_at, created_at
FROM bounty_targets WHERE status=? ORDER BY id ASC LIMIT 1;`
	t, err := scanTarget(tx.QueryRowContext(ctx, q, string(domain.StatusQueued)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bounty_targets SET status=? WHERE id=? AND status=?;`,
		string(domain.StatusScanning), t.ID, string(domain.StatusQueued))
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n != 1 {
		// Lost a race despite the mutex; treat as empty rather than hand the
		// same row to two callers.
		return nil, nil
	}
	t.Status = domain.StatusScanning
	return t, tx.Commit()
}

// MarkScanned completes a popped target: scanning -> scanned on ok,
// scanning -> error otherwise, stamping last_scanned_at.
func (r *TargetRepository) MarkScanned(ctx context.Context, id int64, ok bool, when time.Time) error {
	status := domain.StatusScanned
	if !ok {
		status = domain.StatusError
	}
	_, err := r.db.sql.ExecContext(ctx,
		`UPDATE bounty_targets SET status=?, last_scanned_at=? WHERE id=?;`,
		string(status), fmtTime(when), id)
	return err
}

func (r *TargetRepository) Recent(ctx context.Context, limit int) ([]*domain.Target, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, platform_id, target, scope, status, last_scanned_at, created_at
FROM bounty_targets ORDER BY id DESC LIMIT ?;`
	rows, err := r.db.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TargetRepository) CountScanning(ctx context.Context) (int, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bounty_targets WHERE status=?;`,
		string(domain.StatusScanning)).Scan(&n)
	return n, err
}

// Progress counts terminal targets (scanned or error) against the whole queue.
func (r *TargetRepository) Progress(ctx context.Context) (domain.Progress, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status IN (?,?) THEN 1 ELSE 0 END), 0)
FROM bounty_targets;`
	var p domain.Progress
	err := r.db.sql.QueryRowContext(ctx, q,
		string(domain.StatusScanned), string(domain.StatusError)).Scan(&p.Total, &p.Scanned)
	if err != nil {
		return domain.Progress{}, err
	}
	if p.Total > 0 {
		p.Percent = p.Scanned * 100 / p.Total
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*domain.Target, error) {
	var t domain.Target
	var status, created string
	var lastScanned sql.NullString
	if err := row.Scan(&t.ID, &t.PlatformID, &t.Target, &t.Scope, &status, &lastScanned, &created); err != nil {
		return nil, err
	}
	t.Status = domain.TargetStatus(status)
	t.LastScannedAt = parseNullTime(lastScanned)
	t.CreatedAt = parseTime(created)
	return &t, nil
}
