package projections

import (
	"sort"
	"time"

	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// GetWeeklyStatsQuery carries input for the weekly report projection.
type GetWeeklyStatsQuery struct {
	ReferenceDay day.Day      // any day inside the week to report on
	WeekStart    time.Weekday // Monday (corrected) or Sunday (legacy)
	Strategy     streak.Strategy
	ProgramStart day.Day // anchors the week number
}

// WeekHighlight is one highlight shared during the report week.
type WeekHighlight struct {
	Date    string // YYYY/MM/DD display form
	Content string
}

// StudentWeek is one student's slice of the weekly report.
type StudentWeek struct {
	Name         string
	Email        string
	WeekCheckins int // distinct eligible days inside the window
	WeekRate     int // round(WeekCheckins/7*100)
	Streak       int // per the configured strategy, over all history
	TotalDays    int // distinct eligible days ever
	Rank         int // 1-based, by Streak descending
	Milestones   []int
	MethodCounts map[string]int
	Highlights   []WeekHighlight
}

// WeeklyStats is the cohort-wide weekly report.
type WeeklyStats struct {
	WeekNumber   int
	WeekStartDay day.Day
	WeekEndDay   day.Day
	Students     []StudentWeek
	AverageRate  int
	PerfectCount int // WeekCheckins == 7
	NoCheckin    int // WeekCheckins == 0
}

// QueryGetWeeklyStats computes per-student weekly counts and the cohort
// summary for the week containing ReferenceDay. Students with no eligible
// record anywhere in the dataset have no resolvable contact address and
// are excluded; all summary counts run over the filtered set only.
// PRE: ds is a loaded snapshot
// POST: Every returned StudentWeek has a non-empty Email
func QueryGetWeeklyStats(ds *snapshot.Dataset, query GetWeeklyStatsQuery) WeeklyStats {
	weekStart, weekEnd := weekWindow(query.ReferenceDay, query.WeekStart)

	stats := WeeklyStats{
		WeekNumber:   weekStart.DiffDays(query.ProgramStart)/7 + 1,
		WeekStartDay: weekStart,
		WeekEndDay:   weekEnd,
	}

	today := ds.Clock.Today()
	eligible := ds.EligibleDays()

	for _, student := range ds.Roster {
		days := eligible[student.Name]
		email := ds.ContactFor(student.Name)
		if len(days) == 0 || email == "" {
			continue
		}

		week := StudentWeek{
			Name:         student.Name,
			Email:        email,
			Streak:       streak.Compute(days, query.Strategy, today),
			TotalDays:    len(days),
			MethodCounts: make(map[string]int),
		}
		for _, d := range days {
			if inWindow(d, weekStart, weekEnd) {
				week.WeekCheckins++
			}
		}
		week.WeekRate = roundPercent(week.WeekCheckins, 7)
		week.Milestones = streak.Milestones(week.Streak)

		for _, rec := range ds.Records {
			if rec.StudentName != student.Name || !rec.Eligible(today) || !inWindow(rec.Day, weekStart, weekEnd) {
				continue
			}
			if rec.ExtractionMethod != "" {
				week.MethodCounts[rec.ExtractionMethod]++
			}
			if rec.HighlightText != "" {
				week.Highlights = append(week.Highlights, WeekHighlight{
					Date:    slashDate(rec.Day),
					Content: rec.HighlightText,
				})
			}
		}

		stats.Students = append(stats.Students, week)
	}

	// Rank by streak descending, name ascending for determinism.
	sort.Slice(stats.Students, func(i, j int) bool {
		if stats.Students[i].Streak != stats.Students[j].Streak {
			return stats.Students[i].Streak > stats.Students[j].Streak
		}
		return stats.Students[i].Name < stats.Students[j].Name
	})

	rateSum := 0
	for i := range stats.Students {
		stats.Students[i].Rank = i + 1
		rateSum += stats.Students[i].WeekRate
		switch stats.Students[i].WeekCheckins {
		case 7:
			stats.PerfectCount++
		case 0:
			stats.NoCheckin++
		}
	}
	stats.AverageRate = roundPercent(rateSum, len(stats.Students)*100)
	return stats
}

// weekWindow returns the first and last day of the week containing ref,
// given the configured first day of week.
func weekWindow(ref day.Day, startDay time.Weekday) (day.Day, day.Day) {
	offset := (int(ref.Weekday()) - int(startDay) + 7) % 7
	start := ref.AddDays(-offset)
	return start, start.AddDays(6)
}

func inWindow(d, start, end day.Day) bool {
	return !d.Before(start) && !d.After(end)
}

// slashDate renders a Day the way the original reports did (YYYY/MM/DD).
func slashDate(d day.Day) string {
	t := time.Date(d.Year, time.Month(d.Month), d.Dom, 0, 0, 0, 0, time.UTC)
	return t.Format("2006/01/02")
}
