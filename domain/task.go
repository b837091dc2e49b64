package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxImages caps the number of images attached to a single task.
	MaxImages = 5
	// MaxTitleLength is counted in characters, matching VARCHAR(200).
	MaxTitleLength = 200
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// ParseStatus validates a wire value. An empty string is rejected; callers decide defaults.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusTodo, StatusDoing, StatusDone:
		return s, nil
	default:
		return "", Invalid("status must be one of todo, doing, done")
	}
}

// Task is a dated work-log entry.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Note          *string   `json:"note"`
	Status        Status    `json:"status"`
	TaskDate      string    `json:"task_date"`
	StartTime     *string   `json:"start_time"`
	EndTime       *string   `json:"end_time"`
	CompletedDate *string   `json:"completed_date"`
	ImagePath     *string   `json:"image_path"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SetImages replaces the image list and keeps the legacy single-image field in sync.
func (t *Task) SetImages(images []string) {
	if t == nil {
		return
	}
	t.Images = append([]string{}, images...)
	t.ImagePath = nil
	if len(t.Images) > 0 {
		first := t.Images[0]
		t.ImagePath = &first
	}
}

// HasImage reports whether locator is attached to the task.
func (t *Task) HasImage(locator string) bool {
	if t == nil {
		return false
	}
	for _, img := range t.Images {
		if img == locator {
			return true
		}
	}
	return false
}

// Validate checks the fields required for a stored task.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" || t.TaskDate == "" {
		return Invalid("title, task_date required")
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return Invalid("title must be at most 200 characters")
	}
	if len(t.Images) > MaxImages {
		return ErrTooManyImages
	}
	return nil
}

// CompletedDateFor derives completed_date for a status written by a create or patch.
// A done status stamps today; todo and doing clear the date.
func CompletedDateFor(status Status, now time.Time) *string {
	if status != StatusDone {
		return nil
	}
	today := FormatDate(now)
	return &today
}
