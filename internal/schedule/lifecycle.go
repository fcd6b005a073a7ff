package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxSnoozeDays bounds a single snooze; larger requests are ignored.
const MaxSnoozeDays = 365

var dayCadencePattern = regexp.MustCompile(`(?i)^(\s*)(\d+)(\s*days?\b.*)$`)

// ParseSnoozeDays accepts whatever the client sent for "days" and returns a
// usable shift. Anything that is not an integer in [0, MaxSnoozeDays] becomes 0.
func ParseSnoozeDays(v any) int {
	var n int
	switch d := v.(type) {
	case int:
		n = d
	case int64:
		n = int(d)
	case float64:
		if d != math.Trunc(d) || d > MaxSnoozeDays || d < 0 {
			return 0
		}
		n = int(d)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 || n > MaxSnoozeDays {
		return 0
	}
	return n
}

// ShiftDue moves a YYYY-MM-DD due date by days calendar days.
func ShiftDue(due string, days int) (string, error) {
	d, err := time.Parse(DayLayout, due)
	if err != nil {
		return "", fmt.Errorf("schedule: bad due date %q: %w", due, err)
	}
	return AddDays(d, days).Format(DayLayout), nil
}

// WidenCadence rewrites a "N day(s)" cadence to "N+days day(s)", keeping the
// rest of the string as written. Week/month/year cadences, empty cadences, a
// zero shift and results past MaxIntervalDays come back unchanged with
// changed=false.
func WidenCadence(cadence string, days int) (widened string, changed bool) {
	if days <= 0 {
		return cadence, false
	}
	m := dayCadencePattern.FindStringSubmatch(cadence)
	if m == nil {
		return cadence, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n > MaxIntervalDays-days {
		return cadence, false
	}
	return m[1] + strconv.Itoa(n+days) + m[3], true
}
