package domain

// TaskPatch is a partial update of a stored task.
type TaskPatch struct {
	Title         Field[string]
	Note          Field[*string]
	Status        Field[Status]
	TaskDate      Field[string]
	StartTime     Field[*string]
	EndTime       Field[*string]
	CompletedDate Field[*string]
	Images        Field[[]string]
}

// Apply writes every Set field onto t. Unset and Keep leave t untouched.
func (p TaskPatch) Apply(t *Task) {
	if t == nil {
		return
	}
	t.Title = p.Title.Or(t.Title)
	t.Note = p.Note.Or(t.Note)
	t.Status = p.Status.Or(t.Status)
	t.TaskDate = p.TaskDate.Or(t.TaskDate)
	t.StartTime = p.StartTime.Or(t.StartTime)
	t.EndTime = p.EndTime.Or(t.EndTime)
	t.CompletedDate = p.CompletedDate.Or(t.CompletedDate)
	if images, ok := p.Images.Value(); ok {
		t.SetImages(images)
	}
}

// IsEmpty reports whether the patch writes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Note.IsSet() && !p.Status.IsSet() && !p.TaskDate.IsSet() &&
		!p.StartTime.IsSet() && !p.EndTime.IsSet() && !p.CompletedDate.IsSet() && !p.Images.IsSet()
}
