package rules

import "context"

// Repository port for both rule tiers.
//
// LatestShadowID returns (0, nil) when no shadow rule exists. Promote copies
// the pattern of the given shadow rule into a new live rule and returns the
// new live id; the shadow row stays untouched.
type Repository interface {
	AddShadow(ctx context.Context, pattern string) (int64, error)
	LatestShadowID(ctx context.Context) (int64, error)
	Promote(ctx context.Context, shadowID int64) (int64, error)
	RecentShadow(ctx context.Context, limit int) ([]*Rule, error)
	RecentLive(ctx context.Context, limit int) ([]*Rule, error)
}
