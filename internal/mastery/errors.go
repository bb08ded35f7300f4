package mastery

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Callers match with
// errors.Is; everything wrapping a storage driver error carries ErrStorage.
var (
	// ErrInvalidInput marks malformed caller input: empty observations, blank
	// concept names, negative elapsed time. Never retried.
	ErrInvalidInput = errors.New("mastery: invalid input")

	// ErrDegenerateModel marks a parameter combination that makes the Bayesian
	// evidence step unsolvable (zero denominator). Caught at startup by
	// ModelConfig.Validate; should never surface at call time.
	ErrDegenerateModel = errors.New("mastery: degenerate model parameters")

	// ErrConcurrentUpdate marks exhaustion of the optimistic-concurrency retry
	// loop on a concept row.
	ErrConcurrentUpdate = errors.New("mastery: concurrent update conflict")

	// ErrStorage wraps persistence-layer failures.
	ErrStorage = errors.New("mastery: storage failure")
)

func invalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func storageErr(op string, err error) error {
	// Both the sentinel and the driver error stay matchable with errors.Is/As.
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
