package mastery

import (
	"testing"
	"time"

	"github.com/studygarden/backend/internal/models"
)

func conceptAt(name string, probability float64, practiced time.Time) models.ConceptMastery {
	return models.ConceptMastery{
		ConceptName:        name,
		MasteryProbability: probability,
		LastPracticedAt:    practiced,
	}
}

func TestPassChanceEmpty(t *testing.T) {
	got, err := PassChance(nil, nil, NoPreviousPassChance, time.Now(), DefaultModelConfig())
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	if got != 0 {
		t.Errorf("PassChance(empty) = %d, want 0", got)
	}
}

func TestPassChanceUniformMean(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	// Fresh concepts (no decay): mean of 0.9 and 0.3 = 0.6 → 60.
	concepts := []models.ConceptMastery{
		conceptAt("algebra", 0.9, now),
		conceptAt("geometry", 0.3, now),
	}

	got, err := PassChance(concepts, nil, NoPreviousPassChance, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	if got != 60 {
		t.Errorf("PassChance = %d, want 60", got)
	}
}

func TestPassChanceDamping(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	concepts := []models.ConceptMastery{
		conceptAt("algebra", 0.9, now),
		conceptAt("geometry", 0.3, now),
	}

	// Raw 60 against a stored 30 clamps to 45 (+15).
	got, err := PassChance(concepts, nil, 30, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	if got != 45 {
		t.Errorf("PassChance with prev=30 = %d, want 45", got)
	}

	// And a collapse from 90 clamps to 75 (-15).
	got, err = PassChance(concepts, nil, 90, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	if got != 75 {
		t.Errorf("PassChance with prev=90 = %d, want 75", got)
	}
}

func TestPassChanceDampingBound(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	concepts := []models.ConceptMastery{
		conceptAt("algebra", 1.0, now),
	}

	for prev := 0; prev <= 100; prev += 5 {
		got, err := PassChance(concepts, nil, prev, now, cfg)
		if err != nil {
			t.Fatalf("PassChance error: %v", err)
		}
		delta := got - prev
		if delta < -cfg.MaxPassChanceDelta || delta > cfg.MaxPassChanceDelta {
			t.Errorf("prev=%d: delta %d exceeds ±%d", prev, delta, cfg.MaxPassChanceDelta)
		}
	}
}

func TestPassChanceAppliesDecay(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	fresh := []models.ConceptMastery{conceptAt("algebra", 0.8, now)}
	stale := []models.ConceptMastery{conceptAt("algebra", 0.8, now.Add(-14*24*time.Hour))}

	freshPct, err := PassChance(fresh, nil, NoPreviousPassChance, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	stalePct, err := PassChance(stale, nil, NoPreviousPassChance, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}

	if freshPct != 80 {
		t.Errorf("fresh concept = %d, want 80", freshPct)
	}
	// One half-life: 0.8*e^-1 ≈ 0.294 → 29.
	if stalePct != 29 {
		t.Errorf("14-day-old concept = %d, want 29", stalePct)
	}
}

func TestPassChanceWeightOverrides(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	concepts := []models.ConceptMastery{
		conceptAt("core theorem", 1.0, now),
		conceptAt("trivia", 0.0, now),
	}

	// Weighting the mastered concept 3:1 lifts the mean to 0.75 → 75.
	weights := map[string]float64{"core theorem": 3}
	got, err := PassChance(concepts, weights, NoPreviousPassChance, now, cfg)
	if err != nil {
		t.Fatalf("PassChance error: %v", err)
	}
	if got != 75 {
		t.Errorf("weighted PassChance = %d, want 75", got)
	}
}

func TestPassChanceNegativeElapsed(t *testing.T) {
	cfg := DefaultModelConfig()
	now := time.Now()

	// A lastPracticedAt in the future means clock skew or corruption.
	concepts := []models.ConceptMastery{
		conceptAt("algebra", 0.8, now.Add(time.Hour)),
	}
	if _, err := PassChance(concepts, nil, NoPreviousPassChance, now, cfg); err == nil {
		t.Error("expected error for future lastPracticedAt, got nil")
	}
}
