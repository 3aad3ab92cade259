package progression

import "math"

// LevelInfo is one row of the fixed level table.
type LevelInfo struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	RequiredXP int    `json:"required_xp"`
}

// Levels is the ascending threshold table. Level 1 requires 0 XP, so every
// total resolves to at least level 1.
var Levels = []LevelInfo{
	{Level: 1, Name: "Basics of Money", RequiredXP: 0},
	{Level: 2, Name: "Bank Basics", RequiredXP: 100},
	{Level: 3, Name: "Credit & Debt", RequiredXP: 250},
	{Level: 4, Name: "Investing 101", RequiredXP: 450},
	{Level: 5, Name: "Retirement Planning", RequiredXP: 700},
}

// Bonus amounts added on top of the level-scaled base award.
const (
	StreakBonusXP  = 2
	SpeedBonusXP   = 5
	PerfectBonusXP = 5
)

// Bonuses flags which award predicates held for an answer.
type Bonuses struct {
	Streak  bool `json:"streak"`
	Speed   bool `json:"speed"`
	Perfect bool `json:"perfect"`
}

// AwardXP computes the XP granted for one correct answer:
// base scaled by 10% per learner level above 1, plus any earned bonuses,
// rounded to the nearest integer.
func AwardXP(base, level int, b Bonuses) int {
	xp := float64(base) * (1 + float64(level-1)*0.10)
	if b.Streak {
		xp += StreakBonusXP
	}
	if b.Speed {
		xp += SpeedBonusXP
	}
	if b.Perfect {
		xp += PerfectBonusXP
	}
	return int(math.Round(xp))
}

// CurrentLevel derives the learner level from total XP by scanning the
// table from the highest threshold down.
func CurrentLevel(totalXP int) int {
	for i := len(Levels) - 1; i >= 0; i-- {
		if totalXP >= Levels[i].RequiredXP {
			return Levels[i].Level
		}
	}
	return 1
}

// LevelName returns the display name for a level, or an empty string for an
// unknown level.
func LevelName(level int) string {
	for _, l := range Levels {
		if l.Level == level {
			return l.Name
		}
	}
	return ""
}
