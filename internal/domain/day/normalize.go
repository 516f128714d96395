package day

import (
	"strconv"
	"strings"
	"time"
)

// Normalize parses the heterogeneous date strings produced by the form
// export into a Day. Supported shapes, tried in order:
//
//  1. slash dates, "2026/1/9" (YYYY/M/D when the first field has 4 digits,
//     otherwise M/D/YYYY), with an optional trailing localized time-of-day
//     suffix such as "2026/1/9 下午 4:52:25" which is discarded;
//  2. dash dates, "2026-01-09";
//  3. a generic RFC3339 / date-time parse of the whole cleaned string.
//
// PRE: raw may be empty or arbitrary text
// POST: Returns the calendar day, or ErrUnparseable/ErrInvalidDate; never panics
func Normalize(raw string) (Day, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return Day{}, ErrUnparseable
	}

	// Everything after the first space is a time-of-day suffix.
	if i := strings.IndexByte(cleaned, ' '); i >= 0 {
		cleaned = cleaned[:i]
	}

	if parts := strings.Split(cleaned, "/"); len(parts) == 3 {
		return fromParts(parts, len(parts[0]) == 4)
	}
	if parts := strings.Split(cleaned, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		return fromParts(parts, true)
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return FromTime(t), nil
		}
	}
	return Day{}, ErrUnparseable
}

// fromParts builds a Day from three numeric fields, year-first or
// month-first. Fields are plain integers; leading zeros are tolerated.
func fromParts(parts []string, yearFirst bool) (Day, error) {
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Day{}, ErrUnparseable
		}
		nums[i] = n
	}

	var d Day
	if yearFirst {
		d = Day{Year: nums[0], Month: nums[1], Dom: nums[2]}
	} else {
		d = Day{Year: nums[2], Month: nums[0], Dom: nums[1]}
	}
	if !d.valid() {
		return Day{}, ErrInvalidDate
	}
	return d, nil
}
