package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"todo", "doing", "done", " DONE "} {
		s, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, s)
	}

	_, err := ParseStatus("blocked")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	_, err = ParseStatus("")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestTaskSetImagesMirrorsLegacyField(t *testing.T) {
	task := &Task{}

	task.SetImages([]string{"/uploads/a.png", "/uploads/b.png"})
	require.NotNil(t, task.ImagePath)
	assert.Equal(t, "/uploads/a.png", *task.ImagePath)
	assert.Len(t, task.Images, 2)

	task.SetImages(nil)
	assert.Nil(t, task.ImagePath)
	assert.NotNil(t, task.Images)
	assert.Empty(t, task.Images)
}

func TestTaskSetImagesCopiesInput(t *testing.T) {
	in := []string{"/uploads/a.png"}
	task := &Task{}
	task.SetImages(in)
	in[0] = "/uploads/mutated.png"
	assert.Equal(t, "/uploads/a.png", task.Images[0])
}

func TestTaskValidate(t *testing.T) {
	assert.NoError(t, (&Task{Title: "write report", TaskDate: "2024-06-01"}).Validate())
	assert.Error(t, (&Task{Title: "  ", TaskDate: "2024-06-01"}).Validate())
	assert.Error(t, (&Task{Title: "x"}).Validate())
	assert.NoError(t, (&Task{Title: strings.Repeat("업", MaxTitleLength), TaskDate: "2024-06-01"}).Validate())
	assert.Error(t, (&Task{Title: strings.Repeat("업", MaxTitleLength+1), TaskDate: "2024-06-01"}).Validate())

	tooMany := &Task{Title: "x", TaskDate: "2024-06-01"}
	tooMany.SetImages(make([]string, MaxImages+1))
	assert.ErrorIs(t, tooMany.Validate(), ErrTooManyImages)
}

func TestCompletedDateFor(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 10, 0, 0, time.Local)

	done := CompletedDateFor(StatusDone, now)
	require.NotNil(t, done)
	assert.Equal(t, "2024-06-15", *done)

	assert.Nil(t, CompletedDateFor(StatusTodo, now))
	assert.Nil(t, CompletedDateFor(StatusDoing, now))
}

func TestParseDateAndClock(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", d)

	_, err = ParseDate("2024-13-01")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", c)

	c, err = ParseClock("17:05:30")
	require.NoError(t, err)
	assert.Equal(t, "17:05:30", c)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange("2024-06-01", "2024-06-30")
	require.NoError(t, err)
	assert.True(t, r.Contains("2024-06-01"))
	assert.True(t, r.Contains("2024-06-30"))
	assert.False(t, r.Contains("2024-05-31"))
	assert.False(t, r.Contains("2024-07-01"))
	assert.False(t, r.Empty())

	_, err = NewDateRange("", "2024-06-30")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	backwards, err := NewDateRange("2024-06-30", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, backwards.Empty())
}
