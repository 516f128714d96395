package day

import "time"

// Clock answers "what day is it" for every eligibility and window
// calculation. The program runs on a single fixed UTC offset (Taipei time
// for the original cohort), and an operator can pin Today to a fixed date
// to replay historical data. The Clock is plain data carried on the
// dataset snapshot; there is no package-level override.
type Clock struct {
	Offset   time.Duration // fixed offset from UTC, e.g. 8h
	Override *Day          // when set, Today returns this day
	NowFunc  func() time.Time
}

// DefaultOffset is the cohort's home timezone offset (UTC+8).
const DefaultOffset = 8 * time.Hour

// NewClock returns a Clock on the default offset with no override.
func NewClock() Clock {
	return Clock{Offset: DefaultOffset}
}

// Today returns the current calendar day under the clock's offset, or the
// override when one is pinned.
func (c Clock) Today() Day {
	if c.Override != nil {
		return *c.Override
	}
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	return FromTime(now().UTC().Add(c.Offset))
}

// Now returns the current instant shifted to the clock's offset. Used for
// countdown-style displays, never for day comparisons.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	return now().UTC().Add(c.Offset)
}
