package streak

import (
	"errors"
	"sort"

	"cohortboard/internal/domain/day"
)

// Strategy names one of the two streak readings the program has used.
// They disagree for anyone who stopped checking in: maxStreak is the best
// run ever achieved, currentStreak is the run still alive today. The
// choice changes leaderboard semantics, so it is an explicit named value
// carried in configuration, never an implicit default inside a formula.
type Strategy string

const (
	// StrategyMaxStreak counts the longest run of consecutive days
	// anywhere in the history.
	StrategyMaxStreak Strategy = "maxStreak"
	// StrategyCurrentStreak counts the run ending today or yesterday;
	// anyone whose last check-in is older shows 0.
	StrategyCurrentStreak Strategy = "currentStreak"
)

// ErrUnknownStrategy is returned when parsing an unrecognized strategy name.
var ErrUnknownStrategy = errors.New("unknown streak strategy")

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMaxStreak, StrategyCurrentStreak:
		return Strategy(s), nil
	}
	return "", ErrUnknownStrategy
}

// Compute returns the streak length for one student's deduplicated set of
// completed days, under the given strategy. today is only consulted by
// StrategyCurrentStreak.
// PRE: days holds at most one entry per calendar day (callers dedup by Day.Key)
// POST: Returns a length >= 0; empty input yields 0
func Compute(days []day.Day, strategy Strategy, today day.Day) int {
	if strategy == StrategyCurrentStreak {
		return current(days, today)
	}
	return longest(days)
}

// longest walks the sorted days once, extending a run whenever the gap to
// the previous day is exactly one calendar day.
func longest(days []day.Day) int {
	if len(days) == 0 {
		return 0
	}
	sorted := sortedCopy(days)

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].DiffDays(sorted[i-1]) == 1 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// current counts the run ending at the most recent day, provided that day
// is today or yesterday; a longer gap means the streak is broken.
func current(days []day.Day, today day.Day) int {
	if len(days) == 0 {
		return 0
	}
	sorted := sortedCopy(days)

	latest := sorted[len(sorted)-1]
	if today.DiffDays(latest) > 1 {
		return 0
	}

	run := 1
	for i := len(sorted) - 1; i > 0; i-- {
		if sorted[i].DiffDays(sorted[i-1]) != 1 {
			break
		}
		run++
	}
	return run
}

func sortedCopy(days []day.Day) []day.Day {
	sorted := make([]day.Day, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted
}
