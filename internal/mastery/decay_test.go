package mastery

import (
	"errors"
	"math"
	"testing"
)

func TestDecayIdentityAtZero(t *testing.T) {
	cfg := DefaultModelConfig()

	for _, m := range []float64{0, 0.3, 0.5, 0.999, 1} {
		got, err := Decay(m, 0, cfg)
		if err != nil {
			t.Fatalf("Decay(%f, 0) error: %v", m, err)
		}
		if got != m {
			t.Errorf("Decay(%f, 0) = %f, want exact identity", m, got)
		}
	}
}

func TestDecayOneHalfLife(t *testing.T) {
	cfg := DefaultModelConfig() // halfLifeDays = 14

	// 0.8 * e^-1 ≈ 0.2943
	got, err := Decay(0.8, 14, cfg)
	if err != nil {
		t.Fatalf("Decay error: %v", err)
	}
	want := 0.8 * math.Exp(-1)
	if math.Abs(got-want) > 0.0001 {
		t.Errorf("Decay(0.8, 14) = %f, want %f", got, want)
	}
}

func TestDecayMonotonic(t *testing.T) {
	cfg := DefaultModelConfig()

	days := []float64{0, 0.5, 1, 3, 7, 14, 30, 90, 365}
	prev := math.Inf(1)
	for _, d := range days {
		got, err := Decay(0.9, d, cfg)
		if err != nil {
			t.Fatalf("Decay(0.9, %f) error: %v", d, err)
		}
		if got > prev {
			t.Errorf("Decay not monotonic: Decay(0.9, %f) = %f > %f", d, got, prev)
		}
		if got < 0 || got > 1 {
			t.Errorf("Decay(0.9, %f) = %f, outside [0,1]", d, got)
		}
		prev = got
	}
}

func TestDecayNeverExactlyZero(t *testing.T) {
	cfg := DefaultModelConfig()

	got, err := Decay(0.5, 10000, cfg)
	if err != nil {
		t.Fatalf("Decay error: %v", err)
	}
	if got <= 0 {
		t.Errorf("Decay(0.5, 10000) = %g, want strictly positive", got)
	}
}

func TestDecayInvalidInputs(t *testing.T) {
	cfg := DefaultModelConfig()

	if _, err := Decay(0.5, -1, cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative days: got %v, want ErrInvalidInput", err)
	}
	if _, err := Decay(-0.2, 1, cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative mastery: got %v, want ErrInvalidInput", err)
	}
	if _, err := Decay(1.2, 1, cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("mastery > 1: got %v, want ErrInvalidInput", err)
	}
}
