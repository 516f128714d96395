package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	emailAdapter "cohortboard/internal/adapters/email"
	statsStore "cohortboard/internal/adapters/storage/stats"
	"cohortboard/internal/application/projections"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// SendWeeklyReportsInput carries input for the weekly report send.
type SendWeeklyReportsInput struct {
	// TestRecipient, when set, sends a single report (the top-ranked
	// student's data) to this address instead of mailing the cohort.
	TestRecipient string
}

// SendWeeklyReportsDeps holds dependencies for SendWeeklyReports.
type SendWeeklyReportsDeps struct {
	Holder       *snapshot.Holder
	Sender       emailAdapter.Sender
	StatsStore   statsStore.Store
	Strategy     streak.Strategy
	WeekStartDay time.Weekday
	ProgramStart day.Day
	FromAddress  string
	ReplyTo      string
	GenerateID   func() string
	Now          func() time.Time
}

// SendWeeklyReportsResult reports the send outcome.
type SendWeeklyReportsResult struct {
	WeekNumber     int
	Sent           int
	Failed         int
	FailedStudents []string
}

// ExecuteSendWeeklyReports mails every student their weekly milestone report.
// A failed send is logged and skipped so one bad address never blocks the rest.
// PRE: A snapshot has been loaded; Sender is configured
// POST: One report_log row per attempted student delivery; test sends are not logged
func ExecuteSendWeeklyReports(ctx context.Context, input SendWeeklyReportsInput, deps SendWeeklyReportsDeps) (SendWeeklyReportsResult, error) {
	ds := deps.Holder.Get()
	if ds == nil {
		return SendWeeklyReportsResult{}, errors.New("dataset not loaded")
	}

	weekly := projections.QueryGetWeeklyStats(ds, projections.GetWeeklyStatsQuery{
		ReferenceDay: ds.Clock.Today(),
		WeekStart:    deps.WeekStartDay,
		Strategy:     deps.Strategy,
		ProgramStart: deps.ProgramStart,
	})
	if len(weekly.Students) == 0 {
		return SendWeeklyReportsResult{}, errors.New("no students with check-in records")
	}

	week := emailAdapter.WeekSummary{
		WeekNumber:    weekly.WeekNumber,
		WeekStart:     slashKey(weekly.WeekStartDay),
		WeekEnd:       slashKey(weekly.WeekEndDay),
		TotalStudents: len(weekly.Students),
	}
	result := SendWeeklyReportsResult{WeekNumber: weekly.WeekNumber}

	if input.TestRecipient != "" {
		sample := weekly.Students[0]
		html, err := emailAdapter.RenderWeeklyReport(studentReport(sample), week)
		if err != nil {
			return result, err
		}
		_, err = deps.Sender.Send(ctx, emailAdapter.SendRequest{
			To:      []string{input.TestRecipient},
			From:    deps.FromAddress,
			Subject: emailAdapter.TestReportSubject(weekly.WeekNumber, sample.Name),
			HTML:    html,
			ReplyTo: deps.ReplyTo,
		})
		if err != nil {
			return result, fmt.Errorf("test send: %w", err)
		}
		result.Sent = 1
		slog.Info("weekly_report_test_sent", "recipient", input.TestRecipient, "sample_student", sample.Name)
		return result, nil
	}

	for _, sw := range weekly.Students {
		messageID, sendErr := sendStudentReport(ctx, deps, sw, week, weekly.WeekNumber)

		entry := statsStore.ReportEntry{
			ID:          deps.GenerateID(),
			WeekNumber:  weekly.WeekNumber,
			StudentName: sw.Name,
			Recipient:   sw.Email,
			MessageID:   messageID,
			Status:      statsStore.ReportStatusSent,
			SentAt:      deps.Now(),
		}
		if sendErr != nil {
			entry.Status = statsStore.ReportStatusFailed
			result.Failed++
			result.FailedStudents = append(result.FailedStudents, sw.Name)
			slog.Error("weekly_report_send_failed", "student", sw.Name, "error", sendErr.Error())
		} else {
			result.Sent++
		}
		if err := deps.StatsStore.LogReport(ctx, entry); err != nil {
			slog.Warn("report_log_write_failed", "student", sw.Name, "error", err.Error())
		}
	}

	slog.Info("weekly_reports_sent", "week", weekly.WeekNumber, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

func sendStudentReport(ctx context.Context, deps SendWeeklyReportsDeps, sw projections.StudentWeek, week emailAdapter.WeekSummary, weekNumber int) (string, error) {
	html, err := emailAdapter.RenderWeeklyReport(studentReport(sw), week)
	if err != nil {
		return "", err
	}
	sent, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{sw.Email},
		From:    deps.FromAddress,
		Subject: emailAdapter.WeeklyReportSubject(weekNumber, sw.Name),
		HTML:    html,
		ReplyTo: deps.ReplyTo,
	})
	if err != nil {
		return "", err
	}
	return sent.MessageID, nil
}

// studentReport maps one projection row onto the email view, with method
// counts flattened into a stable order.
func studentReport(sw projections.StudentWeek) emailAdapter.StudentReport {
	methods := make([]emailAdapter.MethodCount, 0, len(sw.MethodCounts))
	for method, count := range sw.MethodCounts {
		methods = append(methods, emailAdapter.MethodCount{Method: method, Count: count})
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Count != methods[j].Count {
			return methods[i].Count > methods[j].Count
		}
		return methods[i].Method < methods[j].Method
	})

	highlights := make([]emailAdapter.HighlightNote, 0, len(sw.Highlights))
	for _, h := range sw.Highlights {
		highlights = append(highlights, emailAdapter.HighlightNote{Date: h.Date, Content: h.Content})
	}

	return emailAdapter.StudentReport{
		Name:         sw.Name,
		WeekCheckins: sw.WeekCheckins,
		WeekRate:     sw.WeekRate,
		Streak:       sw.Streak,
		TotalDays:    sw.TotalDays,
		Rank:         sw.Rank,
		Milestones:   sw.Milestones,
		Methods:      methods,
		Highlights:   highlights,
	}
}

// slashKey renders a day as YYYY/MM/DD for display.
func slashKey(d day.Day) string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Dom)
}
