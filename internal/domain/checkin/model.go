package checkin

import (
	"strings"

	"cohortboard/internal/domain/day"
)

// Record is one row of the form-response sheet. Free-text fields are
// opaque here; only name, date and status drive any computation.
type Record struct {
	Timestamp        string // submission instant as exported, informational only
	Email            string
	StudentName      string
	CheckinDateRaw   string
	CompletionStatus string
	HighlightText    string
	ExtractionMethod string
	ArticleText      string
	MessageToPeers   string

	// Day is the normalized form of CheckinDateRaw, zero when the raw
	// value did not parse. Populated once at snapshot load.
	Day day.Day
}

// IsCompleted classifies a completion status field. The form wording
// changed between cohorts, so three encodings are accepted: a localized
// "yes"+"completed" pair, an English "yes" with the localized "completed",
// or a checkmark emoji anywhere in the value.
// PRE: status may be empty
// POST: Returns true only for a recognized completed marker
func IsCompleted(status string) bool {
	if status == "" {
		return false
	}
	s := strings.ToLower(status)
	return (strings.Contains(s, "是") && strings.Contains(s, "完成")) ||
		(strings.Contains(s, "yes") && strings.Contains(s, "完成")) ||
		strings.Contains(s, "✅")
}

// Eligible reports whether the record counts toward streaks and rates:
// completed, named, carrying a normalized day, and not dated after today.
// Future-dated rows (clock skew, leftover test data) never count.
func (r Record) Eligible(today day.Day) bool {
	if !IsCompleted(r.CompletionStatus) {
		return false
	}
	if r.StudentName == "" || r.Day.IsZero() {
		return false
	}
	return !r.Day.After(today)
}
