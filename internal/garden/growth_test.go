package garden

import "testing"

func TestStageForPassChance(t *testing.T) {
	tests := []struct {
		passChance int
		want       string
	}{
		{0, StageSeed},
		{9, StageSeed},
		{10, StageSprout},
		{24, StageSprout},
		{25, StageSeedling},
		{44, StageSeedling},
		{45, StageBudding},
		{64, StageBudding},
		{65, StageBlooming},
		{84, StageBlooming},
		{85, StageThriving},
		{100, StageThriving},
	}

	for _, tt := range tests {
		if got := StageForPassChance(tt.passChance); got != tt.want {
			t.Errorf("StageForPassChance(%d) = %q, want %q", tt.passChance, got, tt.want)
		}
	}
}

func TestQuizXP(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"all wrong", 0, 5, 0},
		{"perfect", 5, 5, 50 + 25},
		{"great accuracy", 4, 5, 40 + 10},
		{"middling", 3, 5, 30},
		{"zero total", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuizXP(tt.correct, tt.total); got != tt.want {
				t.Errorf("QuizXP(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{2, 1.0},
		{3, 1.15},
		{6, 1.15},
		{7, 1.25},
		{13, 1.25},
		{14, 1.5},
		{29, 1.5},
		{30, 2.0},
		{365, 2.0},
	}

	for _, tt := range tests {
		if got := StreakMultiplier(tt.streak); got != tt.want {
			t.Errorf("StreakMultiplier(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}

func TestApplyStreakMultiplier(t *testing.T) {
	if got := ApplyStreakMultiplier(75, 1.15); got != 86 {
		t.Errorf("ApplyStreakMultiplier(75, 1.15) = %d, want 86", got)
	}
	if got := ApplyStreakMultiplier(0, 2.0); got != 0 {
		t.Errorf("ApplyStreakMultiplier(0, 2.0) = %d, want 0", got)
	}
}
