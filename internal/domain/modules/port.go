package modules

import "context"

// Repository port (upsert by module name + full listing)
type Repository interface {
	Set(ctx context.Context, module, status, message string) error
	List(ctx context.Context) ([]*Status, error)
}
