package task

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/internal/images"
	"github.com/fastygo/worklog/pkg/logger"
	"github.com/fastygo/worklog/repository"
	"github.com/fastygo/worklog/usecase"
)

// CreateInput carries a creation request. Nil pointers are fields the client did not send.
type CreateInput struct {
	Title     string
	TaskDate  string
	Note      *string
	Status    *string
	StartTime *string
	EndTime   *string
	Images    []images.Upload
}

// PatchInput carries a partial update. Nil pointers are fields the client did not send;
// an empty string clears a nullable field.
type PatchInput struct {
	Title       *string
	Note        *string
	Status      *string
	TaskDate    *string
	StartTime   *string
	EndTime     *string
	Images      []images.Upload
	ClearImages bool
}

type UseCase struct {
	tasks  repository.TaskRepository
	images usecase.ImageStore
	cache  repository.RangeCache
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*UseCase)

// WithCache puts a list cache in front of ListTasks.
func WithCache(cache repository.RangeCache) Option {
	return func(uc *UseCase) { uc.cache = cache }
}

// WithClock overrides the clock used to stamp completed_date.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

func New(tasks repository.TaskRepository, store usecase.ImageStore, log *zap.Logger, opts ...Option) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		images: store,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) ListTasks(ctx context.Context, rng domain.DateRange) ([]domain.Task, error) {
	if rng.Empty() {
		return []domain.Task{}, nil
	}
	log := logger.WithRequestID(ctx, uc.logger)

	cacheable := false
	var cached repository.CachedList
	if uc.cache != nil {
		var err error
		cached, err = uc.cache.Get(ctx, rng)
		switch {
		case err != nil:
			log.Warn("task list cache read failed", zap.Error(err))
		case cached.Hit:
			return cached.Tasks, nil
		default:
			cacheable = true
		}
	}

	tasks, err := uc.tasks.ListByDateRange(ctx, rng)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := uc.cache.Set(ctx, rng, cached.Generation, tasks); err != nil {
			log.Warn("task list cache write failed", zap.Error(err))
		}
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, in CreateInput) (*domain.Task, error) {
	task, err := uc.draft(in)
	if err != nil {
		return nil, err
	}
	if len(in.Images) > domain.MaxImages {
		return nil, domain.ErrTooManyImages
	}

	locators, err := uc.images.SaveAll(in.Images)
	if err != nil {
		return nil, err
	}
	task.SetImages(locators)

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		uc.images.RemoveAll(locators)
		return nil, err
	}

	uc.invalidate(ctx)
	logger.WithRequestID(ctx, uc.logger).Info("task created",
		zap.String("task_id", created.ID),
		zap.Int("images", len(created.Images)))
	return created, nil
}

// PatchTask applies a partial update. Files that the new record no longer references are
// removed only after the write succeeded.
func (uc *UseCase) PatchTask(ctx context.Context, id string, in PatchInput) (*domain.Task, error) {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, completed, err := uc.scalarPatch(in)
	if err != nil {
		return nil, err
	}
	if len(in.Images) > domain.MaxImages {
		return nil, domain.ErrTooManyImages
	}

	locators, err := uc.images.SaveAll(in.Images)
	if err != nil {
		return nil, err
	}

	decision, err := images.Plan(current.Images, locators, in.ClearImages)
	if err != nil {
		uc.images.RemoveAll(locators)
		return nil, err
	}

	patch.Images = decision.Images.Resolve(current.Images)
	patch.CompletedDate = completed.Resolve(current.CompletedDate)

	updated, err := uc.tasks.Patch(ctx, id, patch)
	if err != nil {
		uc.images.RemoveAll(locators)
		return nil, err
	}

	uc.images.RemoveAll(decision.Delete)
	uc.invalidate(ctx)

	logger.WithRequestID(ctx, uc.logger).Info("task updated",
		zap.String("task_id", id),
		zap.Stringer("image_intent", decision.Intent),
		zap.Int("images_removed", len(decision.Delete)))
	return updated, nil
}

// RemoveImage detaches one image. An unknown locator leaves the task untouched.
func (uc *UseCase) RemoveImage(ctx context.Context, id, locator string) (*domain.Task, error) {
	if locator == "" {
		return nil, domain.Invalid("src required")
	}

	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := images.PlanRemoval(current.Images, locator)
	if decision.Intent == images.IntentNone {
		return current, nil
	}

	updated, err := uc.tasks.Patch(ctx, id, domain.TaskPatch{Images: decision.Images})
	if err != nil {
		return nil, err
	}

	uc.images.RemoveAll(decision.Delete)
	uc.invalidate(ctx)
	return updated, nil
}

// DeleteTask removes the record and then reclaims every file it referenced.
func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}

	uc.images.RemoveAll(current.Images)
	uc.invalidate(ctx)

	logger.WithRequestID(ctx, uc.logger).Info("task deleted",
		zap.String("task_id", id),
		zap.Int("images_removed", len(current.Images)))
	return nil
}

func (uc *UseCase) draft(in CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.TaskDate) == "" {
		return nil, domain.Invalid("title, task_date required")
	}
	date, err := domain.ParseDate(in.TaskDate)
	if err != nil {
		return nil, err
	}

	status := domain.StatusTodo
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		if status, err = domain.ParseStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		Title:         title,
		Note:          optionalText(in.Note),
		Status:        status,
		TaskDate:      date,
		CompletedDate: domain.CompletedDateFor(status, uc.now()),
	}
	if task.StartTime, err = optionalClock(in.StartTime); err != nil {
		return nil, err
	}
	if task.EndTime, err = optionalClock(in.EndTime); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// scalarPatch validates the scalar fields and derives the completed_date intent.
func (uc *UseCase) scalarPatch(in PatchInput) (domain.TaskPatch, domain.Field[*string], error) {
	var patch domain.TaskPatch
	completed := domain.Keep[*string]()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return patch, completed, domain.Invalid("title must not be empty")
		}
		if utf8.RuneCountInString(title) > domain.MaxTitleLength {
			return patch, completed, domain.Invalid("title must be at most 200 characters")
		}
		patch.Title = domain.SetTo(title)
	}
	if in.Note != nil {
		patch.Note = domain.SetTo(optionalText(in.Note))
	}
	if in.Status != nil {
		status, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return patch, completed, err
		}
		patch.Status = domain.SetTo(status)
		completed = domain.SetTo(domain.CompletedDateFor(status, uc.now()))
	}
	if in.TaskDate != nil {
		date, err := domain.ParseDate(*in.TaskDate)
		if err != nil {
			return patch, completed, err
		}
		patch.TaskDate = domain.SetTo(date)
	}
	if in.StartTime != nil {
		clock, err := optionalClock(in.StartTime)
		if err != nil {
			return patch, completed, err
		}
		patch.StartTime = domain.SetTo(clock)
	}
	if in.EndTime != nil {
		clock, err := optionalClock(in.EndTime)
		if err != nil {
			return patch, completed, err
		}
		patch.EndTime = domain.SetTo(clock)
	}
	return patch, completed, nil
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("task list cache invalidation failed", zap.Error(err))
	}
}

func optionalText(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := *v
	return &s
}

func optionalClock(v *string) (*string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	clock, err := domain.ParseClock(*v)
	if err != nil {
		return nil, err
	}
	return &clock, nil
}
