package projections

import (
	"sort"

	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/streak"
)

// TierStudent is one student placed on the leaderboard.
type TierStudent struct {
	Name string
	Days int
}

// TierGroup is one journey band with its members.
type TierGroup struct {
	Tier     streak.Tier
	Students []TierStudent
}

// GetLeaderboardQuery carries input for the leaderboard projection.
type GetLeaderboardQuery struct {
	Strategy streak.Strategy
}

// LeaderboardResult groups the roster into journey tiers, highest first.
type LeaderboardResult struct {
	Tiers []TierGroup
}

// QueryGetLeaderboard assigns every rostered student to the journey tier
// matching their streak. Zero-streak students appear in no tier. Within a
// tier students sort by name so repeated renders are stable.
func QueryGetLeaderboard(ds *snapshot.Dataset, query GetLeaderboardQuery) LeaderboardResult {
	streaks := QueryGetStreaks(ds, GetStreaksQuery{Strategy: query.Strategy})

	result := LeaderboardResult{Tiers: make([]TierGroup, len(streak.JourneyTiers))}
	for i, t := range streak.JourneyTiers {
		result.Tiers[i] = TierGroup{Tier: t}
	}

	for _, student := range ds.Roster {
		days := streaks.StreakFor(student.Name)
		tier := streak.TierFor(days)
		if tier == nil {
			continue
		}
		for i := range result.Tiers {
			if result.Tiers[i].Tier.MinDays == tier.MinDays {
				result.Tiers[i].Students = append(result.Tiers[i].Students, TierStudent{Name: student.Name, Days: days})
				break
			}
		}
	}

	for i := range result.Tiers {
		students := result.Tiers[i].Students
		sort.Slice(students, func(a, b int) bool { return students[a].Name < students[b].Name })
	}
	return result
}
