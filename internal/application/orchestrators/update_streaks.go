package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	statsStore "cohortboard/internal/adapters/storage/stats"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// UpdateStreaksDeps holds dependencies for UpdateStreaks.
type UpdateStreaksDeps struct {
	Holder     *snapshot.Holder
	StatsStore statsStore.Store
	Strategy   streak.Strategy
	Now        func() time.Time
}

// UpdateStreaksResult reports how many rows were written.
type UpdateStreaksResult struct {
	Updated int
}

// ExecuteUpdateStreaks recomputes every roster student's totals and streak
// from the current snapshot and writes them back in one transaction.
// PRE: A snapshot has been loaded
// POST: One row per roster student, including students with no check-ins
func ExecuteUpdateStreaks(ctx context.Context, deps UpdateStreaksDeps) (UpdateStreaksResult, error) {
	ds := deps.Holder.Get()
	if ds == nil {
		return UpdateStreaksResult{}, errors.New("dataset not loaded")
	}

	today := ds.Clock.Today()
	eligible := ds.EligibleDays()
	now := deps.Now()

	rows := make([]statsStore.StudentStats, 0, len(ds.Roster))
	for _, student := range ds.Roster {
		days := eligible[student.Name]
		streakDays := streak.Compute(days, deps.Strategy, today)
		rows = append(rows, statsStore.StudentStats{
			StudentName: student.Name,
			TotalDays:   len(days),
			StreakDays:  streakDays,
			LastCheckin: latestKey(days),
			Milestones:  streak.Milestones(streakDays),
			UpdatedAt:   now,
		})
	}

	if err := deps.StatsStore.UpsertStats(ctx, rows); err != nil {
		return UpdateStreaksResult{}, err
	}

	slog.Info("streaks_updated", "students", len(rows))
	return UpdateStreaksResult{Updated: len(rows)}, nil
}

func latestKey(days []day.Day) string {
	var latest day.Day
	for _, d := range days {
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return ""
	}
	return latest.Key()
}
