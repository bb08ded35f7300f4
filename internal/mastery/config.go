package mastery

import (
	"fmt"
	"os"
	"strconv"
)

// ModelConfig holds the knowledge-tracing parameters. A value is threaded
// explicitly into every update and decay call — no package-level state.
type ModelConfig struct {
	// PTransition is the probability of learning between observations.
	PTransition float64
	// PSlip is the probability of an incorrect answer despite mastery.
	PSlip float64
	// PGuess is the probability of a correct answer despite non-mastery.
	PGuess float64
	// HalfLifeDays controls the exponential forgetting curve.
	HalfLifeDays float64
	// DefaultPrior seeds a concept on first sight ("unknown").
	DefaultPrior float64
	// MaxPassChanceDelta bounds how far one aggregation can move the stored
	// pass chance, in percentage points.
	MaxPassChanceDelta int
	// MaxUpdateAttempts bounds the optimistic-concurrency retry loop.
	MaxUpdateAttempts int
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		PTransition:        0.1,
		PSlip:              0.1,
		PGuess:             0.2,
		HalfLifeDays:       14,
		DefaultPrior:       0.3,
		MaxPassChanceDelta: 15,
		MaxUpdateAttempts:  3,
	}
}

// ConfigFromEnv builds a ModelConfig from environment overrides on top of the
// defaults. Call Validate before serving.
func ConfigFromEnv() ModelConfig {
	cfg := DefaultModelConfig()
	cfg.PTransition = envFloat("MASTERY_P_TRANSITION", cfg.PTransition)
	cfg.PSlip = envFloat("MASTERY_P_SLIP", cfg.PSlip)
	cfg.PGuess = envFloat("MASTERY_P_GUESS", cfg.PGuess)
	cfg.HalfLifeDays = envFloat("MASTERY_HALF_LIFE_DAYS", cfg.HalfLifeDays)
	cfg.DefaultPrior = envFloat("MASTERY_DEFAULT_PRIOR", cfg.DefaultPrior)
	return cfg
}

// Validate fails fast on parameter combinations that could zero an evidence
// denominator at any prior in [0,1]. With slip and guess strictly inside
// (0,1) both branch denominators stay positive.
func (c ModelConfig) Validate() error {
	if c.PSlip <= 0 || c.PSlip >= 1 {
		return fmt.Errorf("%w: pSlip %v must be in (0,1)", ErrDegenerateModel, c.PSlip)
	}
	if c.PGuess <= 0 || c.PGuess >= 1 {
		return fmt.Errorf("%w: pGuess %v must be in (0,1)", ErrDegenerateModel, c.PGuess)
	}
	if c.PTransition < 0 || c.PTransition > 1 {
		return fmt.Errorf("%w: pTransition %v must be in [0,1]", ErrDegenerateModel, c.PTransition)
	}
	if c.HalfLifeDays <= 0 {
		return fmt.Errorf("%w: halfLifeDays %v must be positive", ErrDegenerateModel, c.HalfLifeDays)
	}
	if c.DefaultPrior < 0 || c.DefaultPrior > 1 {
		return fmt.Errorf("%w: defaultPrior %v must be in [0,1]", ErrDegenerateModel, c.DefaultPrior)
	}
	if c.MaxPassChanceDelta < 1 || c.MaxPassChanceDelta > 100 {
		return fmt.Errorf("%w: maxPassChanceDelta %d must be in [1,100]", ErrDegenerateModel, c.MaxPassChanceDelta)
	}
	if c.MaxUpdateAttempts < 1 {
		return fmt.Errorf("%w: maxUpdateAttempts %d must be at least 1", ErrDegenerateModel, c.MaxUpdateAttempts)
	}
	return nil
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
