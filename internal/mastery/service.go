package mastery

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/studygarden/backend/internal/models"
)

// Ledger is the persistence surface the engine needs. Satisfied by *Store;
// tests substitute an in-memory fake.
type Ledger interface {
	GetOrCreateConcept(userID, subjectID int64, conceptName string, defaultPrior float64) (*models.ConceptMastery, error)
	UpdateConcept(c *models.ConceptMastery, newProbability float64, observed, correct int) (*models.ConceptMastery, error)
	ListConcepts(userID, subjectID int64) ([]models.ConceptMastery, error)
	GetPassChance(userID, subjectID int64) (*models.SubjectPassChance, error)
	UpsertPassChance(userID, subjectID int64, percent int, computedAt time.Time) error
	GetIngestedResult(attemptID string) (int, bool, error)
	MarkIngested(attemptID string, userID, subjectID int64, percent int) error
}

type Service struct {
	ledger Ledger
	cfg    ModelConfig
	nowFn  func() time.Time
}

func NewService(ledger Ledger, cfg ModelConfig) *Service {
	return &Service{ledger: ledger, cfg: cfg, nowFn: time.Now}
}

func (s *Service) Config() ModelConfig {
	return s.cfg
}

// ── Quiz-Result Ingestion ───────────────────────────────

// Ingest folds one completed quiz attempt into the concept ledger and
// recomputes the subject's pass chance. The attemptID makes the call
// idempotent: a second ingestion of the same attempt is a no-op returning the
// previously stored pass chance.
//
// Per-concept writes use optimistic concurrency; a group that loses the race
// is re-read and re-folded up to cfg.MaxUpdateAttempts times. A group that
// fails outright is reported in the returned error but does not roll back
// groups already persisted.
func (s *Service) Ingest(userID, subjectID int64, attemptID string, observations []models.Observation) (*models.IngestionResult, error) {
	if len(observations) == 0 {
		return nil, invalidInputf("empty observations for attempt %q", attemptID)
	}
	if attemptID == "" {
		return nil, invalidInputf("missing attempt id")
	}

	// Normalize concept labels once, at the boundary. They are opaque keys
	// supplied by the quiz-generation layer — no closed catalog to check.
	normalized := make([]models.Observation, len(observations))
	for i, obs := range observations {
		name := strings.ToLower(strings.TrimSpace(obs.ConceptName))
		if name == "" {
			return nil, invalidInputf("blank concept name at observation %d", i)
		}
		normalized[i] = models.Observation{ConceptName: name, Correct: obs.Correct}
	}

	if percent, seen, err := s.ledger.GetIngestedResult(attemptID); err != nil {
		return nil, err
	} else if seen {
		return &models.IngestionResult{PassChancePercent: &percent, AlreadyIngested: true}, nil
	}

	// Group by concept, preserving both first-seen group order and answer
	// order within each group (the fold is order-sensitive).
	order := make([]string, 0, len(normalized))
	groups := make(map[string][]bool)
	for _, obs := range normalized {
		if _, ok := groups[obs.ConceptName]; !ok {
			order = append(order, obs.ConceptName)
		}
		groups[obs.ConceptName] = append(groups[obs.ConceptName], obs.Correct)
	}

	var updated []models.ConceptMastery
	var groupErrs []error
	for _, concept := range order {
		row, err := s.updateConcept(userID, subjectID, concept, groups[concept])
		if err != nil {
			groupErrs = append(groupErrs, fmt.Errorf("concept %q: %w", concept, err))
			continue
		}
		updated = append(updated, *row)
	}

	// Aggregate over the subject's full concept set — untouched concepts have
	// decayed since they were last read, so the touched set alone is not enough.
	// A nil PassChancePercent tells the caller aggregation failed; a literal 0
	// would read as a real estimate.
	result := &models.IngestionResult{UpdatedConcepts: updated}
	percent, err := s.recomputePassChance(userID, subjectID)
	if err != nil {
		groupErrs = append(groupErrs, err)
	} else {
		result.PassChancePercent = &percent
		if err := s.ledger.MarkIngested(attemptID, userID, subjectID, percent); err != nil {
			log.Printf("WARN: failed to mark attempt %s ingested: %v", attemptID, err)
		}
	}

	if len(groupErrs) > 0 {
		return result, errors.Join(groupErrs...)
	}
	return result, nil
}

// updateConcept runs the read → fold → conditional-write loop for one
// concept group.
func (s *Service) updateConcept(userID, subjectID int64, concept string, results []bool) (*models.ConceptMastery, error) {
	correct := 0
	for _, r := range results {
		if r {
			correct++
		}
	}

	for attempt := 0; attempt < s.cfg.MaxUpdateAttempts; attempt++ {
		row, err := s.ledger.GetOrCreateConcept(userID, subjectID, concept, s.cfg.DefaultPrior)
		if err != nil {
			return nil, err
		}
		posterior, err := Update(row.MasteryProbability, results, s.cfg)
		if err != nil {
			return nil, err
		}
		updated, err := s.ledger.UpdateConcept(row, posterior, len(results), correct)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			return updated, nil
		}
		// Lost the race — re-read the now-current prior and fold again.
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts on concept %q", ErrConcurrentUpdate, s.cfg.MaxUpdateAttempts, concept)
}

// ── Aggregation ─────────────────────────────────────────

// ComputePassChance recomputes the subject's pass chance from the current
// concept set without writing anything back. Damping runs against the stored
// previous value, which only ingestion moves, so back-to-back reads with no
// intervening quiz return the same number.
func (s *Service) ComputePassChance(userID, subjectID int64) (int, error) {
	percent, _, err := s.aggregatePassChance(userID, subjectID)
	return percent, err
}

// recomputePassChance aggregates and persists the damped result. Ingestion
// only — the stored percent is the damping baseline for every later read.
func (s *Service) recomputePassChance(userID, subjectID int64) (int, error) {
	percent, now, err := s.aggregatePassChance(userID, subjectID)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.UpsertPassChance(userID, subjectID, percent, now); err != nil {
		return 0, err
	}
	return percent, nil
}

func (s *Service) aggregatePassChance(userID, subjectID int64) (int, time.Time, error) {
	now := s.nowFn()

	concepts, err := s.ledger.ListConcepts(userID, subjectID)
	if err != nil {
		return 0, now, err
	}

	prev := NoPreviousPassChance
	stored, err := s.ledger.GetPassChance(userID, subjectID)
	if err != nil {
		return 0, now, err
	}
	if stored != nil {
		prev = stored.PassChancePercent
	}

	percent, err := PassChance(concepts, nil, prev, now, s.cfg)
	if err != nil {
		return 0, now, err
	}
	return percent, now, nil
}

// ── Read-Only Breakdown ─────────────────────────────────

// MasteryBreakdown returns the per-concept view with decay applied, for the
// subject detail screen. Read-only — the stored rows are untouched.
func (s *Service) MasteryBreakdown(userID, subjectID int64) ([]models.ConceptMasteryView, error) {
	concepts, err := s.ledger.ListConcepts(userID, subjectID)
	if err != nil {
		return nil, err
	}
	now := s.nowFn()

	views := make([]models.ConceptMasteryView, 0, len(concepts))
	for _, c := range concepts {
		effective, err := Decay(c.MasteryProbability, elapsedDays(now, c.LastPracticedAt), s.cfg)
		if err != nil {
			return nil, err
		}
		views = append(views, models.ConceptMasteryView{
			ConceptName:        c.ConceptName,
			MasteryProbability: c.MasteryProbability,
			EffectiveMastery:   effective,
			TotalAttempts:      c.TotalAttempts,
			CorrectAttempts:    c.CorrectAttempts,
			LastPracticedAt:    c.LastPracticedAt,
		})
	}
	return views, nil
}
