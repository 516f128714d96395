package day

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrUnparseable = errors.New("value does not contain a recognizable calendar date")
	ErrInvalidDate = errors.New("parsed values do not form a valid calendar date")
)

// Day is a calendar day with no time component. Equality and ordering are
// defined on the (Year, Month, Dom) triple only, so two check-ins on the
// same calendar day always compare equal regardless of wall-clock instant.
type Day struct {
	Year  int
	Month int
	Dom   int
}

// Key returns the canonical YYYY-MM-DD form used for dedup sets and map keys.
func (d Day) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Dom)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Dom == 0
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Dom < other.Dom
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return other.Before(d)
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t := d.anchor().AddDate(0, 0, n)
	return FromTime(t)
}

// DiffDays returns the number of whole calendar days from other to d.
// Both days are anchored at noon UTC before subtracting so the result is
// exact day arithmetic, never off by one around daylight-saving shifts.
func (d Day) DiffDays(other Day) int {
	return int(d.anchor().Sub(other.anchor()) / (24 * time.Hour))
}

// Weekday returns the day of week for d.
func (d Day) Weekday() time.Weekday {
	return d.anchor().Weekday()
}

// anchor places the day at noon UTC for safe duration arithmetic.
func (d Day) anchor() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Dom, 12, 0, 0, 0, time.UTC)
}

// FromTime extracts the calendar day of t in t's own location.
func FromTime(t time.Time) Day {
	y, m, dom := t.Date()
	return Day{Year: y, Month: int(m), Dom: dom}
}

// valid reports whether the triple names a real calendar date. time.Date
// normalizes overflow (month 13, day 32), so round-tripping detects it.
func (d Day) valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Dom < 1 || d.Dom > 31 {
		return false
	}
	return FromTime(d.anchor()) == d
}
