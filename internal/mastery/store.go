package mastery

import (
	"database/sql"
	"time"

	"github.com/studygarden/backend/internal/models"
)

// Store is the Postgres-backed concept ledger.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Concept Ledger ──────────────────────────────────────

// GetOrCreateConcept returns the mastery row for (user, subject, concept),
// creating it with the configured prior on first sight. Concepts have no
// fixed catalog — they exist from the first observed answer onward.
func (s *Store) GetOrCreateConcept(userID, subjectID int64, conceptName string, defaultPrior float64) (*models.ConceptMastery, error) {
	_, err := s.db.Exec(
		`INSERT INTO concept_mastery (user_id, subject_id, concept_name, mastery_probability)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, subject_id, concept_name) DO NOTHING`,
		userID, subjectID, conceptName, defaultPrior,
	)
	if err != nil {
		return nil, storageErr("upsert concept", err)
	}

	var c models.ConceptMastery
	err = s.db.QueryRow(
		`SELECT id, user_id, subject_id, concept_name, mastery_probability,
		        total_attempts, correct_attempts, last_practiced_at, version
		 FROM concept_mastery
		 WHERE user_id = $1 AND subject_id = $2 AND concept_name = $3`,
		userID, subjectID, conceptName,
	).Scan(&c.ID, &c.UserID, &c.SubjectID, &c.ConceptName, &c.MasteryProbability,
		&c.TotalAttempts, &c.CorrectAttempts, &c.LastPracticedAt, &c.Version)
	if err != nil {
		return nil, storageErr("get concept", err)
	}
	return &c, nil
}

// UpdateConcept writes a new posterior conditionally on the version read
// earlier being unchanged. Returns (nil, nil) when another writer got there
// first; the caller re-reads and re-folds.
func (s *Store) UpdateConcept(c *models.ConceptMastery, newProbability float64, observed, correct int) (*models.ConceptMastery, error) {
	updated := *c
	err := s.db.QueryRow(
		`UPDATE concept_mastery
		 SET mastery_probability = $1,
		     total_attempts = total_attempts + $2,
		     correct_attempts = correct_attempts + $3,
		     last_practiced_at = NOW(),
		     version = version + 1
		 WHERE id = $4 AND version = $5
		 RETURNING mastery_probability, total_attempts, correct_attempts, last_practiced_at, version`,
		newProbability, observed, correct, c.ID, c.Version,
	).Scan(&updated.MasteryProbability, &updated.TotalAttempts, &updated.CorrectAttempts,
		&updated.LastPracticedAt, &updated.Version)
	if err == sql.ErrNoRows {
		return nil, nil // version moved under us
	}
	if err != nil {
		return nil, storageErr("update concept", err)
	}
	return &updated, nil
}

func (s *Store) ListConcepts(userID, subjectID int64) ([]models.ConceptMastery, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, subject_id, concept_name, mastery_probability,
		        total_attempts, correct_attempts, last_practiced_at, version
		 FROM concept_mastery
		 WHERE user_id = $1 AND subject_id = $2
		 ORDER BY concept_name`,
		userID, subjectID,
	)
	if err != nil {
		return nil, storageErr("list concepts", err)
	}
	defer rows.Close()

	var concepts []models.ConceptMastery
	for rows.Next() {
		var c models.ConceptMastery
		if err := rows.Scan(&c.ID, &c.UserID, &c.SubjectID, &c.ConceptName, &c.MasteryProbability,
			&c.TotalAttempts, &c.CorrectAttempts, &c.LastPracticedAt, &c.Version); err != nil {
			return nil, storageErr("scan concept", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// ── Pass Chance ─────────────────────────────────────────

// GetPassChance returns (nil, nil) when no aggregation has been stored yet.
func (s *Store) GetPassChance(userID, subjectID int64) (*models.SubjectPassChance, error) {
	var pc models.SubjectPassChance
	err := s.db.QueryRow(
		`SELECT user_id, subject_id, pass_chance_percent, computed_at
		 FROM subject_pass_chance
		 WHERE user_id = $1 AND subject_id = $2`,
		userID, subjectID,
	).Scan(&pc.UserID, &pc.SubjectID, &pc.PassChancePercent, &pc.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get pass chance", err)
	}
	return &pc, nil
}

func (s *Store) UpsertPassChance(userID, subjectID int64, percent int, computedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO subject_pass_chance (user_id, subject_id, pass_chance_percent, computed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, subject_id) DO UPDATE
		 SET pass_chance_percent = EXCLUDED.pass_chance_percent,
		     computed_at = EXCLUDED.computed_at`,
		userID, subjectID, percent, computedAt,
	)
	if err != nil {
		return storageErr("upsert pass chance", err)
	}
	return nil
}

// ── Ingestion Ledger ────────────────────────────────────

// GetIngestedResult returns the pass chance stored for a previously ingested
// attempt, or (0, false) when the attempt has not been seen.
func (s *Store) GetIngestedResult(attemptID string) (int, bool, error) {
	var percent int
	err := s.db.QueryRow(
		`SELECT pass_chance_percent FROM mastery_ingestions WHERE attempt_id = $1`,
		attemptID,
	).Scan(&percent)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storageErr("get ingestion", err)
	}
	return percent, true, nil
}

func (s *Store) MarkIngested(attemptID string, userID, subjectID int64, percent int) error {
	_, err := s.db.Exec(
		`INSERT INTO mastery_ingestions (attempt_id, user_id, subject_id, pass_chance_percent)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (attempt_id) DO NOTHING`,
		attemptID, userID, subjectID, percent,
	)
	if err != nil {
		return storageErr("mark ingested", err)
	}
	return nil
}
