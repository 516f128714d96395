package projections

import (
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/streak"
)

// GetStreaksQuery carries input for the streak projection.
type GetStreaksQuery struct {
	Strategy streak.Strategy
}

// StreaksResult maps student name to streak length. Derived, never
// persisted: it is recomputed in full from the snapshot on every call.
type StreaksResult struct {
	ByStudent map[string]int
}

// QueryGetStreaks computes every student's streak from their deduplicated
// eligible check-in days.
// PRE: ds is a loaded snapshot
// POST: Returns one entry per student with at least one eligible record;
// idempotent, the same snapshot always yields the same map
func QueryGetStreaks(ds *snapshot.Dataset, query GetStreaksQuery) StreaksResult {
	today := ds.Clock.Today()

	result := StreaksResult{ByStudent: make(map[string]int)}
	for name, days := range ds.EligibleDays() {
		result.ByStudent[name] = streak.Compute(days, query.Strategy, today)
	}
	return result
}

// StreakFor returns one student's streak, 0 for unknown students.
func (r StreaksResult) StreakFor(name string) int {
	return r.ByStudent[name]
}
