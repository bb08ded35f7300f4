package mastery

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/studygarden/backend/internal/models"
)

// fakeLedger is an in-memory Ledger with adjustable failure behavior.
type fakeLedger struct {
	concepts   map[string]*models.ConceptMastery
	passChance map[int64]*models.SubjectPassChance
	ingested   map[string]int
	nextID     int64

	// conflictsFor forces that many version conflicts on a concept before a
	// write succeeds.
	conflictsFor map[string]int
	// failWrites makes every UpdateConcept call on the named concept error.
	failWrites map[string]bool
	// failUpsertPassChance makes UpsertPassChance error, stranding aggregation.
	failUpsertPassChance bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		concepts:     make(map[string]*models.ConceptMastery),
		passChance:   make(map[int64]*models.SubjectPassChance),
		ingested:     make(map[string]int),
		conflictsFor: make(map[string]int),
		failWrites:   make(map[string]bool),
	}
}

func (f *fakeLedger) key(userID, subjectID int64, concept string) string {
	return fmt.Sprintf("%d/%d/%s", userID, subjectID, concept)
}

func (f *fakeLedger) GetOrCreateConcept(userID, subjectID int64, conceptName string, defaultPrior float64) (*models.ConceptMastery, error) {
	k := f.key(userID, subjectID, conceptName)
	if c, ok := f.concepts[k]; ok {
		copied := *c
		return &copied, nil
	}
	f.nextID++
	c := &models.ConceptMastery{
		ID:                 f.nextID,
		UserID:             userID,
		SubjectID:          subjectID,
		ConceptName:        conceptName,
		MasteryProbability: defaultPrior,
		LastPracticedAt:    time.Now(),
		Version:            1,
	}
	f.concepts[k] = c
	copied := *c
	return &copied, nil
}

func (f *fakeLedger) UpdateConcept(c *models.ConceptMastery, newProbability float64, observed, correct int) (*models.ConceptMastery, error) {
	if f.failWrites[c.ConceptName] {
		return nil, storageErr("update concept", errors.New("disk on fire"))
	}
	if n := f.conflictsFor[c.ConceptName]; n > 0 {
		f.conflictsFor[c.ConceptName] = n - 1
		// Simulate the competing writer bumping the version.
		k := f.key(c.UserID, c.SubjectID, c.ConceptName)
		f.concepts[k].Version++
		return nil, nil
	}
	k := f.key(c.UserID, c.SubjectID, c.ConceptName)
	stored := f.concepts[k]
	if stored.Version != c.Version {
		return nil, nil
	}
	stored.MasteryProbability = newProbability
	stored.TotalAttempts += observed
	stored.CorrectAttempts += correct
	stored.LastPracticedAt = time.Now()
	stored.Version++
	copied := *stored
	return &copied, nil
}

func (f *fakeLedger) ListConcepts(userID, subjectID int64) ([]models.ConceptMastery, error) {
	var out []models.ConceptMastery
	for _, c := range f.concepts {
		if c.UserID == userID && c.SubjectID == subjectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeLedger) GetPassChance(userID, subjectID int64) (*models.SubjectPassChance, error) {
	if pc, ok := f.passChance[subjectID]; ok {
		copied := *pc
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLedger) UpsertPassChance(userID, subjectID int64, percent int, computedAt time.Time) error {
	if f.failUpsertPassChance {
		return storageErr("upsert pass chance", errors.New("disk on fire"))
	}
	f.passChance[subjectID] = &models.SubjectPassChance{
		UserID: userID, SubjectID: subjectID,
		PassChancePercent: percent, ComputedAt: computedAt,
	}
	return nil
}

func (f *fakeLedger) GetIngestedResult(attemptID string) (int, bool, error) {
	pct, ok := f.ingested[attemptID]
	return pct, ok, nil
}

func (f *fakeLedger) MarkIngested(attemptID string, userID, subjectID int64, percent int) error {
	f.ingested[attemptID] = percent
	return nil
}

func newTestService(ledger Ledger) *Service {
	return NewService(ledger, DefaultModelConfig())
}

// ── Tests ───────────────────────────────────────────────

func TestIngestRejectsEmptyObservations(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	_, err := svc.Ingest(1, 1, "attempt-1", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if len(ledger.concepts) != 0 || len(ledger.passChance) != 0 {
		t.Error("no writes should occur on invalid input")
	}
}

func TestIngestRejectsBlankConceptName(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	obs := []models.Observation{
		{ConceptName: "algebra", Correct: true},
		{ConceptName: "   ", Correct: false},
	}
	_, err := svc.Ingest(1, 1, "attempt-1", obs)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if len(ledger.concepts) != 0 {
		t.Error("no writes should occur when any concept name is blank")
	}
}

func TestIngestNewConcept(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "Photosynthesis", Correct: true},
	})
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if len(result.UpdatedConcepts) != 1 {
		t.Fatalf("got %d updated concepts, want 1", len(result.UpdatedConcepts))
	}

	c := result.UpdatedConcepts[0]
	// Labels normalize at the boundary.
	if c.ConceptName != "photosynthesis" {
		t.Errorf("concept name = %q, want normalized %q", c.ConceptName, "photosynthesis")
	}
	// Default prior 0.3, one correct → ≈0.6927.
	if math.Abs(c.MasteryProbability-0.6927) > 0.001 {
		t.Errorf("mastery = %f, want ~0.6927", c.MasteryProbability)
	}
	if c.TotalAttempts != 1 || c.CorrectAttempts != 1 {
		t.Errorf("counters = %d/%d, want 1/1", c.CorrectAttempts, c.TotalAttempts)
	}
	// Fresh single concept at ~0.69 → pass chance 69.
	if result.PassChancePercent == nil {
		t.Fatal("pass chance missing from successful ingest")
	}
	if *result.PassChancePercent != 69 {
		t.Errorf("pass chance = %d, want 69", *result.PassChancePercent)
	}
}

func TestIngestGroupsByConcept(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
		{ConceptName: "geometry", Correct: false},
		{ConceptName: "Algebra", Correct: false}, // same group after normalization
		{ConceptName: "algebra", Correct: true},
	})
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if len(result.UpdatedConcepts) != 2 {
		t.Fatalf("got %d updated concepts, want 2", len(result.UpdatedConcepts))
	}

	// First-seen group order is preserved.
	if result.UpdatedConcepts[0].ConceptName != "algebra" || result.UpdatedConcepts[1].ConceptName != "geometry" {
		t.Errorf("group order = %q, %q", result.UpdatedConcepts[0].ConceptName, result.UpdatedConcepts[1].ConceptName)
	}
	if got := result.UpdatedConcepts[0].TotalAttempts; got != 3 {
		t.Errorf("algebra attempts = %d, want 3", got)
	}
	if got := result.UpdatedConcepts[0].CorrectAttempts; got != 2 {
		t.Errorf("algebra correct = %d, want 2", got)
	}

	// The fold must match applying the observations in original order.
	want, _ := Update(0.3, []bool{true, false, true}, svc.cfg)
	if math.Abs(result.UpdatedConcepts[0].MasteryProbability-want) > 1e-9 {
		t.Errorf("algebra mastery = %f, want %f", result.UpdatedConcepts[0].MasteryProbability, want)
	}
}

func TestIngestIdempotentOnAttemptID(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	obs := []models.Observation{{ConceptName: "algebra", Correct: true}}
	first, err := svc.Ingest(1, 7, "attempt-1", obs)
	if err != nil {
		t.Fatalf("first Ingest error: %v", err)
	}

	second, err := svc.Ingest(1, 7, "attempt-1", obs)
	if err != nil {
		t.Fatalf("second Ingest error: %v", err)
	}
	if !second.AlreadyIngested {
		t.Error("second ingest of same attempt should report AlreadyIngested")
	}
	if first.PassChancePercent == nil || second.PassChancePercent == nil {
		t.Fatal("pass chance missing from successful ingest")
	}
	if *second.PassChancePercent != *first.PassChancePercent {
		t.Errorf("replay pass chance = %d, want stored %d", *second.PassChancePercent, *first.PassChancePercent)
	}

	// The mastery row was not double-updated.
	k := ledger.key(1, 7, "algebra")
	if ledger.concepts[k].TotalAttempts != 1 {
		t.Errorf("attempts = %d after replay, want 1", ledger.concepts[k].TotalAttempts)
	}

	// A fresh attempt with the same answers does fold again.
	third, err := svc.Ingest(1, 7, "attempt-2", obs)
	if err != nil {
		t.Fatalf("third Ingest error: %v", err)
	}
	if third.AlreadyIngested {
		t.Error("distinct attempt should not be treated as a replay")
	}
	if ledger.concepts[k].TotalAttempts != 2 {
		t.Errorf("attempts = %d after second attempt, want 2", ledger.concepts[k].TotalAttempts)
	}
}

func TestIngestRetriesOnVersionConflict(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	// Two conflicts, then success — inside the 3-attempt budget.
	ledger.conflictsFor["algebra"] = 2

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
	})
	if err != nil {
		t.Fatalf("Ingest should succeed after retries: %v", err)
	}
	if len(result.UpdatedConcepts) != 1 {
		t.Fatalf("got %d updated concepts, want 1", len(result.UpdatedConcepts))
	}
}

func TestIngestConcurrentUpdateExhaustion(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	ledger.conflictsFor["algebra"] = 99

	_, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
	})
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("got %v, want ErrConcurrentUpdate", err)
	}
}

func TestIngestPartialFailureKeepsPersistedGroups(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	ledger.failWrites["geometry"] = true

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
		{ConceptName: "geometry", Correct: true},
	})
	if err == nil {
		t.Fatal("expected an error reporting the failed group")
	}
	if !errors.Is(err, ErrStorage) {
		t.Errorf("got %v, want ErrStorage in chain", err)
	}
	if len(result.UpdatedConcepts) != 1 || result.UpdatedConcepts[0].ConceptName != "algebra" {
		t.Errorf("persisted groups should survive: %+v", result.UpdatedConcepts)
	}
}

func TestIngestAggregatesUntouchedConcepts(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	// Seed a second concept the new attempt never touches.
	seed, _ := ledger.GetOrCreateConcept(1, 7, "history", 0.3)
	_ = seed

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
	})
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}

	// Mean over both concepts (~0.693 and 0.3) ≈ 0.496 → damping-free 50.
	if result.PassChancePercent == nil {
		t.Fatal("pass chance missing from successful ingest")
	}
	if *result.PassChancePercent < 45 || *result.PassChancePercent > 55 {
		t.Errorf("pass chance = %d, want ~50 covering the untouched concept", *result.PassChancePercent)
	}
}

func TestComputePassChanceIdempotentRead(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	// Pinned ahead of any row timestamp so elapsed time stays non-negative.
	fixed := time.Now().Add(time.Hour)
	svc.nowFn = func() time.Time { return fixed }

	if _, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
	}); err != nil {
		t.Fatalf("Ingest error: %v", err)
	}

	first, err := svc.ComputePassChance(1, 7)
	if err != nil {
		t.Fatalf("ComputePassChance error: %v", err)
	}
	second, err := svc.ComputePassChance(1, 7)
	if err != nil {
		t.Fatalf("ComputePassChance error: %v", err)
	}
	if first != second {
		t.Errorf("back-to-back reads disagree: %d then %d", first, second)
	}
}

// Reads damp against the stored baseline but never move it: with stored 30
// and a raw mean of 60, every read lands on the damped 45 and the store keeps
// saying 30 until the next ingest.
func TestComputePassChanceReadDoesNotRatchet(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	fixed := time.Now().Add(time.Hour)
	svc.nowFn = func() time.Time { return fixed }

	ledger.GetOrCreateConcept(1, 7, "algebra", 0.6)
	ledger.GetOrCreateConcept(1, 7, "geometry", 0.6)
	ledger.UpsertPassChance(1, 7, 30, time.Now())

	first, err := svc.ComputePassChance(1, 7)
	if err != nil {
		t.Fatalf("ComputePassChance error: %v", err)
	}
	if first != 45 {
		t.Errorf("first read = %d, want damped 45 (30 + 15 toward raw 60)", first)
	}

	second, err := svc.ComputePassChance(1, 7)
	if err != nil {
		t.Fatalf("ComputePassChance error: %v", err)
	}
	if second != first {
		t.Errorf("second read = %d, want %d again", second, first)
	}

	if got := ledger.passChance[7].PassChancePercent; got != 30 {
		t.Errorf("stored baseline moved to %d on a read, want 30", got)
	}
}

// When the concept updates land but aggregation fails, the result must not
// carry a made-up 0% pass chance.
func TestIngestOmitsPassChanceWhenAggregationFails(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	ledger.failUpsertPassChance = true

	result, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("got %v, want ErrStorage in chain", err)
	}
	if result == nil {
		t.Fatal("concept updates landed; want a partial result")
	}
	if len(result.UpdatedConcepts) != 1 {
		t.Errorf("got %d updated concepts, want 1", len(result.UpdatedConcepts))
	}
	if result.PassChancePercent != nil {
		t.Errorf("pass chance = %d, want nil when aggregation fails", *result.PassChancePercent)
	}
	if _, seen, _ := ledger.GetIngestedResult("attempt-1"); seen {
		t.Error("attempt must not be marked ingested without a stored pass chance")
	}
}

func TestMasteryBreakdownReadOnly(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	if _, err := svc.Ingest(1, 7, "attempt-1", []models.Observation{
		{ConceptName: "algebra", Correct: true},
		{ConceptName: "geometry", Correct: false},
	}); err != nil {
		t.Fatalf("Ingest error: %v", err)
	}

	views, err := svc.MasteryBreakdown(1, 7)
	if err != nil {
		t.Fatalf("MasteryBreakdown error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	for _, v := range views {
		if v.EffectiveMastery > v.MasteryProbability {
			t.Errorf("%s: effective %f exceeds stored %f", v.ConceptName, v.EffectiveMastery, v.MasteryProbability)
		}
	}
}
