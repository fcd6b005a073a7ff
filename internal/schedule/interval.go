package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

var intervalPattern = regexp.MustCompile(`(?i)(\d+)\s*(day|week|month|year)s?`)

// MaxIntervalDays bounds a cadence to a century.
const MaxIntervalDays = 36500

var unitDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// ParseInterval turns a cadence such as "7 days" or "2 Weeks" into a day count.
// The first match wins and surrounding text is ignored. ok is false when the
// cadence is empty, unparseable, zero or longer than MaxIntervalDays, which
// callers treat as "not scheduled".
func ParseInterval(s string) (days int, ok bool) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	unit := unitDays[strings.ToLower(m[2])]
	if n <= 0 || n > MaxIntervalDays/unit {
		return 0, false
	}
	return n * unit, true
}
