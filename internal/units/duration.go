package units

import (
	"fmt"
	"time"
)

// FormatCounter renders an elapsed duration as a zero-padded HH:MM:SS
// counter from whole seconds. Negative durations clamp to 00:00:00. Hours
// are not capped at 24 so multi-day counters stay readable.
func FormatCounter(d time.Duration) string {
	totalSeconds := int64(d / time.Second)
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatCounterMillis is FormatCounter over a millisecond interval, the
// representation timestamps use throughout the store.
func FormatCounterMillis(ms int64) string {
	return FormatCounter(time.Duration(ms) * time.Millisecond)
}
