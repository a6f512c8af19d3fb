// timesheet/stats/calendar.go
package stats

import "time"

// DayKeyLayout is the calendar-day document key format for meeting records
// and manual-entry dates.
const DayKeyLayout = "2006-01-02"

// ClockLayout is the wall-clock format for manual-entry start/end times.
const ClockLayout = "15:04"

// SameMonth reports whether a and b fall in the same calendar month of the same year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// SameYear reports whether a and b fall in the same calendar year.
func SameYear(a, b time.Time) bool {
	return a.Year() == b.Year()
}

// StartOfMonth returns midnight on the first day of t's month, in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ParseDayKey parses a "2006-01-02" day key in the local timezone.
func ParseDayKey(dayKey string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, dayKey, time.Local)
}

// CombineDayClock builds an instant from a day key and a wall-clock time,
// e.g. ("2024-06-01", "09:00"). Manual entries are same-day only, so both
// their start and end pass through here with the same day key.
func CombineDayClock(dayKey, clock string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout+"T"+ClockLayout, dayKey+"T"+clock, time.Local)
}
