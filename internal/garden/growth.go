package garden

import "math"

// Growth stages for a subject's plant, ordered by pass chance.
const (
	StageSeed     = "seed"
	StageSprout   = "sprout"
	StageSeedling = "seedling"
	StageBudding  = "budding"
	StageBlooming = "blooming"
	StageThriving = "thriving"
)

// StageForPassChance maps a subject's pass chance (0-100) to a growth stage.
func StageForPassChance(passChance int) string {
	switch {
	case passChance < 10:
		return StageSeed
	case passChance < 25:
		return StageSprout
	case passChance < 45:
		return StageSeedling
	case passChance < 65:
		return StageBudding
	case passChance < 85:
		return StageBlooming
	default:
		return StageThriving
	}
}

// QuizXP returns the base XP for a completed quiz: a flat amount per correct
// answer plus a completion bonus scaled by accuracy.
func QuizXP(correct, total int) int {
	if total == 0 {
		return 0
	}
	base := correct * 10

	accuracy := float64(correct) / float64(total)
	if correct == total {
		return base + 25 // Perfect quiz bonus
	}
	if accuracy >= 0.8 {
		return base + 10
	}
	return base
}

// StreakMultiplier returns the XP multiplier for a daily streak.
func StreakMultiplier(currentStreak int) float64 {
	if currentStreak < 3 {
		return 1.0
	}
	if currentStreak < 7 {
		return 1.15
	}
	if currentStreak < 14 {
		return 1.25
	}
	if currentStreak < 30 {
		return 1.5
	}
	return 2.0
}

// ApplyStreakMultiplier rounds the multiplied XP to the nearest integer.
func ApplyStreakMultiplier(xp int, multiplier float64) int {
	return int(math.Round(float64(xp) * multiplier))
}
