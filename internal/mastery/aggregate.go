package mastery

import (
	"math"
	"time"

	"github.com/studygarden/backend/internal/models"
)

// NoPreviousPassChance is passed as prevPercent when no aggregation has been
// stored yet, disabling the damping clamp for the first computation.
const NoPreviousPassChance = -1

// clockSkewToleranceDays absorbs the routine drift between the database's
// NOW() and the application clock. Anything further in the future is treated
// as a corrupt timestamp.
const clockSkewToleranceDays = 30.0 / 86400

// elapsedDays returns the practice gap in days, flooring sub-tolerance
// negatives at zero.
func elapsedDays(now, lastPracticed time.Time) float64 {
	days := now.Sub(lastPracticed).Hours() / 24
	if days < 0 && days > -clockSkewToleranceDays {
		return 0
	}
	return days
}

// PassChance collapses a subject's concept set into a single 0–100 scalar.
// Each concept's stored probability is decayed from its lastPracticedAt, then
// combined as a weighted mean (uniform weights unless the caller supplies
// per-concept overrides). The delta from the previously stored percent is
// clamped to ±cfg.MaxPassChanceDelta so a single attempt cannot cause a wild
// swing — deliberate damping, not a bug.
//
// An empty concept set returns 0: the "get started" state, not an error.
func PassChance(concepts []models.ConceptMastery, weights map[string]float64, prevPercent int, now time.Time, cfg ModelConfig) (int, error) {
	if len(concepts) == 0 {
		return 0, nil
	}

	var weightedSum, totalWeight float64
	for _, c := range concepts {
		effective, err := Decay(c.MasteryProbability, elapsedDays(now, c.LastPracticedAt), cfg)
		if err != nil {
			return 0, err
		}
		w := 1.0
		if weights != nil {
			if override, ok := weights[c.ConceptName]; ok && override > 0 {
				w = override
			}
		}
		weightedSum += effective * w
		totalWeight += w
	}

	raw := int(math.Round(100 * weightedSum / totalWeight))
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}

	if prevPercent == NoPreviousPassChance {
		return raw, nil
	}
	return dampen(raw, prevPercent, cfg.MaxPassChanceDelta), nil
}

// dampen clamps raw to within maxDelta points of the previous value.
func dampen(raw, prev, maxDelta int) int {
	if raw > prev+maxDelta {
		return prev + maxDelta
	}
	if raw < prev-maxDelta {
		return prev - maxDelta
	}
	return raw
}
