package joblog

import "context"

// Repository port (append + recent listing)
type Repository interface {
	Append(ctx context.Context, job string, level Level, message string) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}
