package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the sqlite handle shared by every repository. The mutex serializes
// read-modify-write operations (pop-next, upserts, idempotent enqueue) so
// concurrent job bodies cannot race between the check and the write.
type DB struct {
	sql *sql.DB
	mu  sync.Mutex
}

// Connect opens (or creates) the database at path and initializes the schema.
// ":memory:" is accepted for tests.
func Connect(ctx context.Context, path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Single connection: sqlite has one writer anyway, and a single conn keeps
	// an in-memory database from splitting per connection.
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Ping for health checks.
func (d *DB) Ping(ctx context.Context) error { return d.sql.PingContext(ctx) }

// Fixed-width UTC layout so lexicographic comparison in SQL matches
// chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	// Tolerate second-precision rows written by other tooling.
	t, _ := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(s))
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
