package units

import (
	"fmt"
	"time"
)

// Sessions are grouped by the calendar day observed in the deployment's
// local timezone, rendered as DD.MM.YYYY. The wall-clock date, not UTC,
// decides when a work day rolls over.
const dateLayout = "02.01.2006"

// LocalDate formats an epoch-millisecond timestamp as a calendar date in
// the given location.
func LocalDate(unixMS int64, loc *time.Location) string {
	return time.UnixMilli(unixMS).In(loc).Format(dateLayout)
}

// ParseLocalDate parses a DD.MM.YYYY date string as midnight in loc.
func ParseLocalDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q: %w", date, err)
	}
	return t, nil
}

// DateDiffDays returns the absolute difference in whole days between two
// DD.MM.YYYY dates, rounding partial days up. Used to window session
// listings to recent days.
func DateDiffDays(a, b string, loc *time.Location) (int, error) {
	ta, err := ParseLocalDate(a, loc)
	if err != nil {
		return 0, err
	}
	tb, err := ParseLocalDate(b, loc)
	if err != nil {
		return 0, err
	}
	diff := tb.Sub(ta)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days, nil
}

// EndOfPreviousDay returns the instant 23:59:59.999 local time on the
// calendar day before now, as epoch milliseconds. Sessions that straddle
// midnight are closed at this boundary so no session spans two dates.
func EndOfPreviousDay(now time.Time, loc *time.Location) int64 {
	local := now.In(loc)
	prev := local.AddDate(0, 0, -1)
	boundary := time.Date(prev.Year(), prev.Month(), prev.Day(), 23, 59, 59, 999_000_000, loc)
	return boundary.UnixMilli()
}

// StartOfDay returns midnight local time on now's calendar day as epoch
// milliseconds.
func StartOfDay(now time.Time, loc *time.Location) int64 {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UnixMilli()
}
