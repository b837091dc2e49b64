package transport

import (
	"bytes"
	"strings"
)

// TaskRequest is the JSON form of a create or update. Nil fields were not sent.
type TaskRequest struct {
	Title      *string `json:"title"`
	Note       *string `json:"note"`
	Status     *string `json:"status"`
	TaskDate   *string `json:"task_date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	ImageClear Flag    `json:"image_clear"`
}

// Flag accepts true, "true" (any case) and 1 as set; anything else is unset.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.ToLower(string(bytes.Trim(data, `"`)))
	*f = Flag(raw == "true" || raw == "1")
	return nil
}

// ParseFlag interprets a form value the same way as Flag.
func ParseFlag(raw string) bool {
	raw = strings.ToLower(strings.TrimSpace(raw))
	return raw == "true" || raw == "1"
}
