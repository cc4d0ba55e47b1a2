package findings

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Add(ctx context.Context, title string, severity Severity, details string) (int64, error)
	Recent(ctx context.Context, limit int) ([]*Finding, error)
}
