package stats

import (
	"context"
	"time"
)

// StudentStats is the derived per-student row written back by the
// automation pass. It duplicates what the dashboard computes live; the
// rendering path never depends on it, it exists for export and audit.
type StudentStats struct {
	StudentName string
	TotalDays   int
	StreakDays  int
	LastCheckin string // YYYY-MM-DD, empty when no eligible record
	Milestones  []int  // earned 7/14/21/28/35 badges
	UpdatedAt   time.Time
}

// ReportEntry is one row of the weekly report send log.
type ReportEntry struct {
	ID          string
	WeekNumber  int
	StudentName string
	Recipient   string
	MessageID   string
	Status      string // sent | failed
	SentAt      time.Time
}

// Report log status constants.
const (
	ReportStatusSent   = "sent"
	ReportStatusFailed = "failed"
)

// Store persists the student_stats write-back and the report send log.
type Store interface {
	UpsertStats(ctx context.Context, rows []StudentStats) error
	GetStats(ctx context.Context, studentName string) (StudentStats, error)
	ListStats(ctx context.Context) ([]StudentStats, error)
	LogReport(ctx context.Context, entry ReportEntry) error
	ListReportsByWeek(ctx context.Context, weekNumber int) ([]ReportEntry, error)
}
