// Package clock lets request handlers freeze "now" once per call.
// Schedule and dashboard code never reads the system clock directly.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in a fixed location.
type RealClock struct {
	Loc *time.Location
}

func (c RealClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always returns T. Used in tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

func NewReal(loc *time.Location) Clock {
	return RealClock{Loc: loc}
}

func NewFixed(t time.Time) Clock {
	return FixedClock{T: t}
}
