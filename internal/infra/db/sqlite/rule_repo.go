package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/sentinel-aio/internal/domain/rules"
)

type RuleRepository struct {
	db *DB
}

func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) AddShadow(ctx context.Context, pattern string) (int64, error) {
	const q = `INSERT INTO rules_shadow(pattern, created_at) VALUES (?,?);`
	res, err := r.db.sql.ExecContext(ctx, q, pattern, fmtTime(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestShadowID returns the highest shadow rule id, or 0 when the tier is empty.
func (r *RuleRepository) LatestShadowID(ctx context.Context) (int64, error) {
	const q = `SELECT id FROM rules_shadow ORDER BY id DESC LIMIT 1;`
	var id int64
	err := r.db.sql.QueryRowContext(ctx, q).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Promote copies the shadow rule's pattern into a new live rule. The shadow
// row is retained; promotion is additive-copy, not move.
func (r *RuleRepository) Promote(ctx context.Context, shadowID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var pattern string
	err = tx.QueryRowContext(ctx, `SELECT pattern FROM rules_shadow WHERE id=?;`, shadowID).Scan(&pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("shadow rule %d not found", shadowID)
	}
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO rules_live(pattern, created_at) VALUES (?,?);`, pattern, fmtTime(time.Now()))
	if err != nil {
		return 0, err
	}
	liveID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return liveID, tx.Commit()
}

func (r *RuleRepository) RecentShadow(ctx context.Context, limit int) ([]*domain.Rule, error) {
	return r.recent(ctx, "rules_shadow", limit)
}

func (r *RuleRepository) RecentLive(ctx context.Context, limit int) ([]*domain.Rule, error) {
	return r.recent(ctx, "rules_live", limit)
}

func (r *RuleRepository) recent(ctx context.Context, table string, limit int) ([]*domain.Rule, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, pattern, created_at FROM ` + table + ` ORDER BY id DESC LIMIT ?;`
	rows, err := r.db.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var created string
		if err := rows.Scan(&rule.ID, &rule.Pattern, &created); err != nil {
			return nil, err
		}
		rule.CreatedAt = parseTime(created)
		out = append(out, &rule)
	}
	return out, rows.Err()
}
