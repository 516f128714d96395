package streak

// MilestoneThresholds are the streak-length badges of the 35-day program.
var MilestoneThresholds = []int{7, 14, 21, 28, 35}

// Milestones returns the contiguous badge tiers reached by a streak: a
// streak of 16 earns {7, 14} and nothing above, a streak of 35 earns all
// five. The tiers are cumulative, never skipped.
func Milestones(streakDays int) []int {
	var earned []int
	for _, threshold := range MilestoneThresholds {
		if streakDays < threshold {
			break
		}
		earned = append(earned, threshold)
	}
	return earned
}

// Tier is one band of the journey leaderboard.
type Tier struct {
	Emoji       string
	Name        string
	MinDays     int
	MaxDays     int
	Description string
}

// JourneyTiers are the leaderboard bands, highest first. Students with a
// zero streak fall outside every band and are not listed.
var JourneyTiers = []Tier{
	{Emoji: "🏆", Name: "完美旅程", MinDays: 35, MaxDays: 999, Description: "連續 35 天"},
	{Emoji: "🏔️", Name: "登峰在望", MinDays: 28, MaxDays: 34, Description: "連續 28-34 天"},
	{Emoji: "🧗", Name: "穩健攀登", MinDays: 21, MaxDays: 27, Description: "連續 21-27 天"},
	{Emoji: "🥾", Name: "步履不停", MinDays: 14, MaxDays: 20, Description: "連續 14-20 天"},
	{Emoji: "🚶", Name: "踏上旅途", MinDays: 7, MaxDays: 13, Description: "連續 7-13 天"},
	{Emoji: "🎒", Name: "整裝待發", MinDays: 1, MaxDays: 6, Description: "連續 1-6 天"},
}

// TierFor returns the journey tier containing the given streak, or nil
// for a zero streak.
func TierFor(streakDays int) *Tier {
	for i := range JourneyTiers {
		t := &JourneyTiers[i]
		if streakDays >= t.MinDays && streakDays <= t.MaxDays {
			return t
		}
	}
	return nil
}
