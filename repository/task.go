package repository

import (
	"context"

	"github.com/fastygo/worklog/domain"
)

// TaskRepository is the durable Task Store.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByDateRange returns tasks with task_date inside the inclusive range, ordered by
	// task_date, then start_time with untimed tasks last, then id.
	ListByDateRange(ctx context.Context, r domain.DateRange) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Patch writes only the Set fields of patch and returns the stored record.
	Patch(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// CachedList is a cache lookup result. Generation must be handed back to Set so that a
// list read before an invalidation is never stored under the newer generation.
type CachedList struct {
	Tasks      []domain.Task
	Hit        bool
	Generation int64
}

// RangeCache caches list results per date range. Invalidate makes every earlier entry unreachable.
type RangeCache interface {
	Get(ctx context.Context, r domain.DateRange) (CachedList, error)
	Set(ctx context.Context, r domain.DateRange, generation int64, tasks []domain.Task) error
	Invalidate(ctx context.Context) error
}
