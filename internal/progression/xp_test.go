package progression

import "testing"

func TestAwardXP(t *testing.T) {
	tests := []struct {
		name    string
		base    int
		level   int
		bonuses Bonuses
		want    int
	}{
		{"base at level 1", 3, 1, Bonuses{}, 3},
		{"level 2 rounds down", 3, 2, Bonuses{}, 3}, // 3.3
		{"level 3 rounds up", 3, 3, Bonuses{}, 4},   // 3.6
		{"level 5 multiplier", 3, 5, Bonuses{}, 4},  // 4.2
		{"streak bonus", 3, 1, Bonuses{Streak: true}, 5},
		{"speed bonus", 3, 1, Bonuses{Speed: true}, 8},
		{"perfect bonus", 3, 1, Bonuses{Perfect: true}, 8},
		{"all bonuses", 3, 1, Bonuses{Streak: true, Speed: true, Perfect: true}, 15},
		{"all bonuses at level 4", 3, 4, Bonuses{Streak: true, Speed: true, Perfect: true}, 16}, // 3.9 + 12
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AwardXP(tt.base, tt.level, tt.bonuses)
			if got != tt.want {
				t.Errorf("AwardXP(%d, %d, %+v) = %d, want %d", tt.base, tt.level, tt.bonuses, got, tt.want)
			}
		})
	}
}

func TestCurrentLevel(t *testing.T) {
	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{449, 3},
		{450, 4},
		{699, 4},
		{700, 5},
		{5000, 5},
		{-10, 1}, // never below level 1
	}

	for _, tt := range tests {
		if got := CurrentLevel(tt.totalXP); got != tt.want {
			t.Errorf("CurrentLevel(%d) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}

func TestCurrentLevelMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 1000; xp += 10 {
		level := CurrentLevel(xp)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at %d XP", prev, level, xp)
		}
		prev = level
	}
}

func TestLevelName(t *testing.T) {
	if got := LevelName(1); got != "Basics of Money" {
		t.Errorf("LevelName(1) = %q", got)
	}
	if got := LevelName(5); got != "Retirement Planning" {
		t.Errorf("LevelName(5) = %q", got)
	}
	if got := LevelName(99); got != "" {
		t.Errorf("LevelName(99) = %q, want empty", got)
	}
}
