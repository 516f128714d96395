package projections

import (
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

// CalendarCell is one day of a student's personal 35-day calendar.
type CalendarCell struct {
	DayNumber int
	Day       day.Day
	Checked   bool
	Missed    bool // on or before today and not checked
	Future    bool
}

// GetPersonalCalendarQuery carries input for the personal calendar.
type GetPersonalCalendarQuery struct {
	StudentName string
	StartDay    day.Day
}

// PersonalCalendarResult is the 35-cell calendar plus summary counts.
type PersonalCalendarResult struct {
	StudentName string
	Cells       []CalendarCell
	CheckedDays int
}

// QueryGetPersonalCalendar renders one student's check-in history onto
// the fixed program window. Unknown students get an all-missed calendar,
// not an error, since "no data" is a representable state.
func QueryGetPersonalCalendar(ds *snapshot.Dataset, query GetPersonalCalendarQuery) PersonalCalendarResult {
	today := ds.Clock.Today()

	checked := make(map[string]bool)
	for _, d := range ds.EligibleDays()[query.StudentName] {
		checked[d.Key()] = true
	}

	result := PersonalCalendarResult{
		StudentName: query.StudentName,
		Cells:       make([]CalendarCell, 0, ProgramDays),
	}
	for i := 0; i < ProgramDays; i++ {
		d := query.StartDay.AddDays(i)
		cell := CalendarCell{DayNumber: i + 1, Day: d}
		switch {
		case d.After(today):
			cell.Future = true
		case checked[d.Key()]:
			cell.Checked = true
			result.CheckedDays++
		default:
			cell.Missed = true
		}
		result.Cells = append(result.Cells, cell)
	}
	return result
}
