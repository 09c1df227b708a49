package recovery

import (
	"strconv"
	"time"
)

// Trailing-window bounds in days.
const (
	DefaultWindowDays = 7
	MinWindowDays     = 1
	MaxWindowDays     = 30
)

// Window returns the trailing [start, end] pair for a days parameter as it
// arrives on the query string. Absent or unparseable input means the
// default window; anything else is clamped to [MinWindowDays,
// MaxWindowDays]. Day arithmetic is calendar-based, so the window tracks
// wall-clock dates across DST shifts.
func Window(raw string, now time.Time) (start, end time.Time) {
	days := DefaultWindowDays
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	if days < MinWindowDays {
		days = MinWindowDays
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}
	return now.AddDate(0, 0, -days), now
}
