package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/repository"
)

const taskColumns = `id, title, note, status, task_date::text, start_time::text, end_time::text,
	completed_date::text, image_path, images_json, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) ListByDateRange(ctx context.Context, rng domain.DateRange) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE task_date BETWEEN $1::date AND $2::date
	ORDER BY task_date, start_time IS NULL, start_time, id`

	rows, err := r.pool.Query(ctx, query, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}

	query := `
	INSERT INTO tasks (id, title, note, status, task_date, start_time, end_time, completed_date, image_path, images_json)
	VALUES ($1, $2, $3, $4, $5::date, $6::time, $7::time, $8::date, $9, $10)
	RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Note,
		string(task.Status),
		task.TaskDate,
		task.StartTime,
		task.EndTime,
		task.CompletedDate,
		firstImage(task.Images),
		encodeImages(task.Images),
	))
}

func (r *taskRepository) Patch(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var set assignments
	if v, ok := patch.Title.Value(); ok {
		set.add("title", "", v)
	}
	if v, ok := patch.Note.Value(); ok {
		set.add("note", "", v)
	}
	if v, ok := patch.Status.Value(); ok {
		set.add("status", "", string(v))
	}
	if v, ok := patch.TaskDate.Value(); ok {
		set.add("task_date", "::date", v)
	}
	if v, ok := patch.StartTime.Value(); ok {
		set.add("start_time", "::time", v)
	}
	if v, ok := patch.EndTime.Value(); ok {
		set.add("end_time", "::time", v)
	}
	if v, ok := patch.CompletedDate.Value(); ok {
		set.add("completed_date", "::date", v)
	}
	if images, ok := patch.Images.Value(); ok {
		set.add("image_path", "", firstImage(images))
		set.add("images_json", "", encodeImages(images))
	}
	set.raw("updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`, set.String(), set.next(), taskColumns)
	args := append(set.args, id)

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		status     string
		imagePath  *string
		imagesJSON *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Note,
		&status,
		&task.TaskDate,
		&task.StartTime,
		&task.EndTime,
		&task.CompletedDate,
		&imagePath,
		&imagesJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.Status(status)
	task.SetImages(decodeImages(imagesJSON, imagePath))
	return &task, nil
}
