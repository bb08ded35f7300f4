package mastery

import "math"

// Decay applies the exponential forgetting curve to a stored mastery
// probability. Zero elapsed time is the identity; the result approaches but
// never reaches zero, so callers must not expect a hard floor.
//
// The ledger stores raw undecayed probabilities — decay is applied lazily at
// read time, which avoids a background refresh job.
func Decay(mastery, daysSinceLastPractice float64, cfg ModelConfig) (float64, error) {
	if mastery < 0 || mastery > 1 {
		return 0, invalidInputf("mastery %v outside [0,1]", mastery)
	}
	if daysSinceLastPractice < 0 {
		// Clock skew or a corrupt timestamp upstream.
		return 0, invalidInputf("negative elapsed days %v", daysSinceLastPractice)
	}
	if daysSinceLastPractice == 0 {
		return mastery, nil
	}
	return mastery * math.Exp(-daysSinceLastPractice/cfg.HalfLifeDays), nil
}
