package bounty

import (
	"context"
	"time"
)

// PlatformRepository port. Upsert overwrites the mutable fields (including
// created_at) when a platform with the same name already exists.
type PlatformRepository interface {
	Upsert(ctx context.Context, name, baseURL, apiKey string, enabled bool) (int64, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	List(ctx context.Context) ([]*Platform, error)
}

// Progress rekap antrian scan untuk metrics.
type Progress struct {
	Total   int `json:"total"`
	Scanned int `json:"scanned"`
	Percent int `json:"percent"`
}

// TargetRepository port.
//
// Enqueue is idempotent per (platformID, target): a duplicate call returns the
// existing row's id with queued=false and changes nothing. PopNext atomically
// selects the oldest queued row, flips it to scanning and returns it; it
// returns (nil, nil) when the queue is empty. Two concurrent pops never
// receive the same row.
type TargetRepository interface {
	Enqueue(ctx context.Context, platformID int64, target, scope string) (id int64, queued bool, err error)
	PopNext(ctx context.Context) (*Target, error)
	MarkScanned(ctx context.Context, id int64, ok bool, when time.Time) error
	Recent(ctx context.Context, limit int) ([]*Target, error)
	CountScanning(ctx context.Context) (int, error)
	Progress(ctx context.Context) (Progress, error)
}
