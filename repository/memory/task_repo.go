// Package memory holds an in-process Task Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/repository"
)

type TaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	now   func() time.Time
}

var _ repository.TaskRepository = (*TaskRepo)(nil)

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{
		tasks: make(map[string]domain.Task),
		now:   time.Now,
	}
}

func (r *TaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepo) ListByDateRange(_ context.Context, rng domain.DateRange) ([]domain.Task, error) {

	r.mu.RLock()
	out := []domain.Task{}
	for _, t := range r.tasks {
		if rng.Contains(t.TaskDate) {
			out = append(out, *cloneTask(t))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TaskDate != b.TaskDate {
			return a.TaskDate < b.TaskDate
		}
		if (a.StartTime == nil) != (b.StartTime == nil) {
			return b.StartTime == nil
		}
		if a.StartTime != nil && *a.StartTime != *b.StartTime {
			return *a.StartTime < *b.StartTime
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *TaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	stored := *cloneTask(*task)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = domain.StatusTodo
	}
	stored.SetImages(stored.Images)
	now := r.now()
	stored.CreatedAt, stored.UpdatedAt = now, now

	r.mu.Lock()
	r.tasks[stored.ID] = stored
	r.mu.Unlock()

	return cloneTask(stored), nil
}

func (r *TaskRepo) Patch(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(&t)
	t.UpdatedAt = r.now()
	r.tasks[id] = t
	return cloneTask(t), nil
}

func (r *TaskRepo) Delete(_ context.Context, id string) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// cloneTask detaches pointer and slice fields so callers cannot mutate stored state.
func cloneTask(t domain.Task) *domain.Task {
	out := t
	out.Note = clonePtr(t.Note)
	out.StartTime = clonePtr(t.StartTime)
	out.EndTime = clonePtr(t.EndTime)
	out.CompletedDate = clonePtr(t.CompletedDate)
	out.SetImages(t.Images)
	return &out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
