package projections

import (
	"math"
	"sort"

	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

// ProgramDays is the fixed length of the cohort run.
const ProgramDays = 35

// GetDailyRateQuery carries input for the daily rate projection.
type GetDailyRateQuery struct {
	Day day.Day
}

// DailyRateResult is the attendance rate for one calendar day.
type DailyRateResult struct {
	Day         day.Day
	Count       int // distinct students with an eligible record that day
	Total       int // roster size, not just students with records
	RatePercent int // round half-up; 0 when Total is 0
}

// QueryGetDailyRate counts distinct eligible check-ins on one day against
// the full roster.
// PRE: ds is a loaded snapshot
// POST: 0 <= RatePercent <= 100; zero-valued result for an empty roster
func QueryGetDailyRate(ds *snapshot.Dataset, query GetDailyRateQuery) DailyRateResult {
	result := DailyRateResult{Day: query.Day, Total: len(ds.Roster)}

	for _, days := range ds.EligibleDays() {
		for _, d := range days {
			if d == query.Day {
				result.Count++
				break
			}
		}
	}
	result.RatePercent = roundPercent(result.Count, result.Total)
	return result
}

// HeatmapCell is one of the 35 day cells of the program heatmap.
type HeatmapCell struct {
	DayNumber   int // 1-based position in the program
	Day         day.Day
	Future      bool // after today: no rate computed, rendered distinctly
	Count       int
	Total       int
	RatePercent int
	Level       int // 0-4 color bucket
}

// GetHeatmapQuery carries input for the heatmap projection.
type GetHeatmapQuery struct {
	StartDay day.Day // first day of the program
}

// HeatmapResult carries the full 35-cell series and program progress.
type HeatmapResult struct {
	Cells           []HeatmapCell
	CurrentDay      int // 1-based day number of today within the program
	ProgressPercent int
}

// QueryGetHeatmap builds the fixed 35-cell series from the program start.
// Cells on or before today always carry a rate, including 0%.
func QueryGetHeatmap(ds *snapshot.Dataset, query GetHeatmapQuery) HeatmapResult {
	today := ds.Clock.Today()

	result := HeatmapResult{Cells: make([]HeatmapCell, 0, ProgramDays)}
	for i := 0; i < ProgramDays; i++ {
		d := query.StartDay.AddDays(i)
		cell := HeatmapCell{DayNumber: i + 1, Day: d}
		if d.After(today) {
			cell.Future = true
		} else {
			rate := QueryGetDailyRate(ds, GetDailyRateQuery{Day: d})
			cell.Count = rate.Count
			cell.Total = rate.Total
			cell.RatePercent = rate.RatePercent
			cell.Level = heatmapLevel(rate.RatePercent)
		}
		result.Cells = append(result.Cells, cell)
	}

	elapsed := today.DiffDays(query.StartDay) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > ProgramDays {
		elapsed = ProgramDays
	}
	result.CurrentDay = elapsed
	result.ProgressPercent = roundPercent(elapsed, ProgramDays)
	return result
}

// TodayStatusResult splits the roster into checked-in and pending names
// for the current day.
type TodayStatusResult struct {
	Day         day.Day
	Checked     []string
	Unchecked   []string
	Count       int
	Total       int
	RatePercent int
}

// QueryGetTodayStatus lists who has and has not checked in today. Names
// come back sorted for stable rendering.
func QueryGetTodayStatus(ds *snapshot.Dataset) TodayStatusResult {
	today := ds.Clock.Today()
	result := TodayStatusResult{Day: today, Total: len(ds.Roster)}

	checked := make(map[string]bool)
	for name, days := range ds.EligibleDays() {
		for _, d := range days {
			if d == today {
				checked[name] = true
				break
			}
		}
	}

	for _, s := range ds.Roster {
		if checked[s.Name] {
			result.Checked = append(result.Checked, s.Name)
		} else {
			result.Unchecked = append(result.Unchecked, s.Name)
		}
	}
	sort.Strings(result.Checked)
	sort.Strings(result.Unchecked)

	result.Count = len(result.Checked)
	result.RatePercent = roundPercent(result.Count, result.Total)
	return result
}

// heatmapLevel buckets a rate into the five heatmap colors.
func heatmapLevel(rate int) int {
	switch {
	case rate <= 20:
		return 0
	case rate <= 40:
		return 1
	case rate <= 60:
		return 2
	case rate <= 80:
		return 3
	default:
		return 4
	}
}

// roundPercent is round-half-up of count/total as a whole percentage.
func roundPercent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
