package history

import (
	"context"
	"time"
)

// Repository port for persisting and querying generation records
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
