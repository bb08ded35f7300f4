package mastery

// Update folds a sequence of correctness observations from one quiz attempt
// into a prior mastery probability using the two-parameter knowledge-tracing
// rule. Order matters: each observation's posterior becomes the prior consumed
// by the next one.
//
// Pure and deterministic — no side effects.
func Update(prior float64, observations []bool, cfg ModelConfig) (float64, error) {
	if prior < 0 || prior > 1 {
		return 0, invalidInputf("prior %v outside [0,1]", prior)
	}
	if len(observations) == 0 {
		return 0, invalidInputf("empty observation sequence")
	}

	p := prior
	for _, correct := range observations {
		post, err := evidenceStep(p, correct, cfg)
		if err != nil {
			return 0, err
		}
		// Learning step: chance of having learned before the next observation.
		p = post + (1-post)*cfg.PTransition
	}
	return clamp01(p), nil
}

// evidenceStep applies Bayes' rule for a single observation.
func evidenceStep(prior float64, correct bool, cfg ModelConfig) (float64, error) {
	var num, denom float64
	if correct {
		num = prior * (1 - cfg.PSlip)
		denom = num + (1-prior)*cfg.PGuess
	} else {
		num = prior * cfg.PSlip
		denom = num + (1-prior)*(1-cfg.PGuess)
	}
	if denom == 0 {
		return 0, ErrDegenerateModel
	}
	return num / denom, nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
