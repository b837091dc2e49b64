package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/worklog/domain"
	pgInfra "github.com/fastygo/worklog/internal/infrastructure/postgres"
)

// newTestPool connects to TEST_DATABASE_URL, migrates it and empties the tasks table.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, pgInfra.MigrateUp(dsn, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE tasks`)
	require.NoError(t, err)
	return pool
}

func TestTaskRepositoryLifecycle(t *testing.T) {
	repo := NewTaskRepository(newTestPool(t))
	ctx := context.Background()

	start := "09:00:00"
	created, err := repo.Create(ctx, &domain.Task{
		Title:     "Write report",
		TaskDate:  "2024-06-15",
		StartTime: &start,
		Images:    []string{"/uploads/a.png", "/uploads/b.png"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, "2024-06-15", created.TaskDate)
	require.NotNil(t, created.ImagePath)
	assert.Equal(t, "/uploads/a.png", *created.ImagePath)

	done := "2024-06-16"
	patched, err := repo.Patch(ctx, created.ID, domain.TaskPatch{
		Status:        domain.SetTo(domain.StatusDone),
		CompletedDate: domain.SetTo(&done),
		Images:        domain.SetTo([]string{}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", patched.Title)
	require.NotNil(t, patched.StartTime)
	assert.Equal(t, "09:00:00", *patched.StartTime)
	require.NotNil(t, patched.CompletedDate)
	assert.Equal(t, done, *patched.CompletedDate)
	assert.Empty(t, patched.Images)
	assert.Nil(t, patched.ImagePath)

	list, err := repo.ListByDateRange(ctx, domain.DateRange{Start: "2024-06-01", End: "2024-06-30"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrTaskNotFound)
}

func TestTaskRepositoryPatchUnknownID(t *testing.T) {
	repo := NewTaskRepository(newTestPool(t))

	_, err := repo.Patch(context.Background(), "missing", domain.TaskPatch{Title: domain.SetTo("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
