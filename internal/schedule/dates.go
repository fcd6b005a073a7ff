package schedule

import "time"

// DayLayout is the wire and storage format of task due dates.
const DayLayout = "2006-01-02"

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDay renders the calendar day of t in loc.
func FormatDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD due date as local midnight.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, loc)
}

// AddDays does calendar arithmetic, so DST shifts never move the day.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DaysBetween counts whole 24h periods from a to b, floored.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		return -int((-d + 24*time.Hour - 1) / (24 * time.Hour))
	}
	return int(d / (24 * time.Hour))
}
