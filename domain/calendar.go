package domain

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// ParseDate normalizes a YYYY-MM-DD calendar date.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", Invalid("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return parsed.Format(DateLayout), nil
}

// ParseClock normalizes a time of day given as HH:MM or HH:MM:SS to HH:MM:SS.
func ParseClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", ClockLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(ClockLayout), nil
		}
	}
	return "", Invalid("invalid time %q, expected HH:MM", raw)
}

// FormatDate renders the local calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange is an inclusive calendar range.
type DateRange struct {
	Start string
	End   string
}

// NewDateRange parses both bounds.
func NewDateRange(start, end string) (DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, Invalid("start, end required")
	}
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether date (YYYY-MM-DD) falls within the range. The layout sorts lexically.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// Empty is true when the end precedes the start.
func (r DateRange) Empty() bool {
	return r.End < r.Start
}
