package projections_test

import (
	"testing"

	"cohortboard/internal/application/projections"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/streak"
)

func TestQueryGetLeaderboard(t *testing.T) {
	rows := checkins("Runner",
		"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04",
		"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08") // streak 8
	rows = append(rows, checkins("Starter", "2026-01-08", "2026-01-09")...) // streak 2
	ds := snapshot.Load(rosterCSV("Runner", "Starter", "Idle"), buildRespCSV(rows), clockAt(2026, 1, 9))

	got := projections.QueryGetLeaderboard(ds, projections.GetLeaderboardQuery{Strategy: streak.StrategyMaxStreak})
	if len(got.Tiers) != len(streak.JourneyTiers) {
		t.Fatalf("tiers = %d, want %d", len(got.Tiers), len(streak.JourneyTiers))
	}

	byMin := make(map[int]projections.TierGroup)
	for _, g := range got.Tiers {
		byMin[g.Tier.MinDays] = g
	}

	if g := byMin[7]; len(g.Students) != 1 || g.Students[0].Name != "Runner" || g.Students[0].Days != 8 {
		t.Errorf("7-13 band = %+v, want Runner with 8 days", g.Students)
	}
	if g := byMin[1]; len(g.Students) != 1 || g.Students[0].Name != "Starter" {
		t.Errorf("1-6 band = %+v, want Starter", g.Students)
	}
	// A student with no eligible records lands in no tier.
	for _, g := range got.Tiers {
		for _, s := range g.Students {
			if s.Name == "Idle" {
				t.Error("Idle placed on the leaderboard with a zero streak")
			}
		}
	}
}

func TestQueryGetLeaderboard_NameOrderWithinTier(t *testing.T) {
	rows := append(checkins("Zoe", "2026-01-08", "2026-01-09"),
		checkins("Amy", "2026-01-05", "2026-01-06")...)
	ds := snapshot.Load(rosterCSV("Zoe", "Amy"), buildRespCSV(rows), clockAt(2026, 1, 9))

	got := projections.QueryGetLeaderboard(ds, projections.GetLeaderboardQuery{Strategy: streak.StrategyMaxStreak})
	for _, g := range got.Tiers {
		if g.Tier.MinDays == 1 {
			if len(g.Students) != 2 || g.Students[0].Name != "Amy" {
				t.Errorf("tier students = %+v, want Amy before Zoe", g.Students)
			}
		}
	}
}
