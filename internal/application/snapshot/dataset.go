package snapshot

import (
	"log/slog"
	"sync/atomic"
	"time"

	"cohortboard/internal/domain/checkin"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/roster"
)

// Column indexes of the two sheet exports. These are the only positional
// accesses in the codebase; everything downstream reads named fields.
const (
	respColTimestamp = 0
	respColEmail     = 1
	respColName      = 2
	respColDate      = 3
	respColStatus    = 4
	respColHighlight = 5
	respColMethod    = 6
	respColArticle   = 7
	respColMessage   = 8

	statsColName     = 0
	statsColEnrolled = 1
	statsColStatus   = 2
)

// maxDateDiagnostics caps unparseable-date log lines per load so one bad
// column cannot flood the log.
const maxDateDiagnostics = 5

// Dataset is one immutable view of both sheets. A refresh builds a whole
// new Dataset and swaps it into the Holder; nothing ever patches one in
// place, so every projection can read it without locking.
type Dataset struct {
	Roster   []roster.Student
	Records  []checkin.Record
	Clock    day.Clock
	LoadedAt time.Time
}

// Load parses both raw CSV exports into a Dataset under the given clock.
// Rows that fail to parse keep their raw fields but carry a zero Day;
// eligibility filtering happens at query time, not here.
// PRE: statsCSV and highlightsCSV are raw export text (may be empty)
// POST: Returns a fully built snapshot; never fails, "no data" is a valid state
func Load(statsCSV, highlightsCSV string, clock day.Clock) *Dataset {
	ds := &Dataset{Clock: clock, LoadedAt: time.Now()}

	for _, row := range ParseCSV(statsCSV) {
		s := roster.Student{
			Name:       field(row, statsColName),
			EnrolledOn: field(row, statsColEnrolled),
			Status:     field(row, statsColStatus),
		}
		if s.Validate() != nil {
			continue
		}
		ds.Roster = append(ds.Roster, s)
	}

	badDates := 0
	for _, row := range ParseCSV(highlightsCSV) {
		rec := checkin.Record{
			Timestamp:        field(row, respColTimestamp),
			Email:            field(row, respColEmail),
			StudentName:      field(row, respColName),
			CheckinDateRaw:   field(row, respColDate),
			CompletionStatus: field(row, respColStatus),
			HighlightText:    field(row, respColHighlight),
			ExtractionMethod: field(row, respColMethod),
			ArticleText:      field(row, respColArticle),
			MessageToPeers:   field(row, respColMessage),
		}
		if rec.CheckinDateRaw != "" {
			d, err := day.Normalize(rec.CheckinDateRaw)
			if err != nil {
				badDates++
				if badDates <= maxDateDiagnostics {
					slog.Warn("checkin_date_unparseable", "raw", rec.CheckinDateRaw, "student", rec.StudentName)
				}
			} else {
				rec.Day = d
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if badDates > maxDateDiagnostics {
		slog.Warn("checkin_date_unparseable_suppressed", "additional", badDates-maxDateDiagnostics)
	}

	return ds
}

// EligibleDays returns each student's deduplicated set of completed
// check-in days, keyed by student name. The per-student sets are what
// every streak and rate computation consumes; duplicates on the same
// calendar day collapse here via the Day.Key map.
func (ds *Dataset) EligibleDays() map[string][]day.Day {
	today := ds.Clock.Today()

	seen := make(map[string]map[string]bool)
	days := make(map[string][]day.Day)
	for _, rec := range ds.Records {
		if !rec.Eligible(today) {
			continue
		}
		keys := seen[rec.StudentName]
		if keys == nil {
			keys = make(map[string]bool)
			seen[rec.StudentName] = keys
		}
		k := rec.Day.Key()
		if keys[k] {
			continue
		}
		keys[k] = true
		days[rec.StudentName] = append(days[rec.StudentName], rec.Day)
	}
	return days
}

// ContactFor resolves a student's email from their most recent eligible
// record. Empty when the student has never submitted a usable row.
func (ds *Dataset) ContactFor(name string) string {
	today := ds.Clock.Today()
	for _, rec := range ds.Records {
		if rec.StudentName == name && rec.Email != "" && rec.Eligible(today) {
			return rec.Email
		}
	}
	return ""
}

// Holder is the process-wide current snapshot, replaced wholesale on each
// successful refresh. Readers always see either the old or the new
// Dataset, never a partial one.
type Holder struct {
	current atomic.Pointer[Dataset]
}

// Get returns the current snapshot, or nil before the first load.
func (h *Holder) Get() *Dataset {
	return h.current.Load()
}

// Set replaces the current snapshot.
func (h *Holder) Set(ds *Dataset) {
	h.current.Store(ds)
}
