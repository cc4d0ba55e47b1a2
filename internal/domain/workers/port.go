package workers

import (
	"context"
	"time"
)

// Repository port.
//
// Register upserts by name, rotates the token and sets the worker online with
// a fresh heartbeat. Heartbeat requires the exact current token for the name
// and fails closed (false, no state change) on mismatch or unknown name.
// CountOnline is a read-time computation (online AND heartbeat >= cutoff);
// SweepStale is the only path that flips workers offline.
type Repository interface {
	Register(ctx context.Context, name, token string, now time.Time) (int64, error)
	Heartbeat(ctx context.Context, name, token string, now time.Time) (bool, error)
	List(ctx context.Context) ([]*Worker, error)
	CountOnline(ctx context.Context, cutoff time.Time) (int, error)
	SweepStale(ctx context.Context, cutoff time.Time) (int64, error)
}
