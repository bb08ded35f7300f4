package subjects

import (
	"database/sql"
	"fmt"

	"github.com/studygarden/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Subjects ────────────────────────────────────────────

func (s *Store) CreateSubject(userID int64, req models.CreateSubjectRequest) (*models.Subject, error) {
	var subject models.Subject
	err := s.db.QueryRow(
		`INSERT INTO subjects (user_id, name, description, exam_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, name, description, exam_date, created_at, updated_at`,
		userID, req.Name, req.Description, req.ExamDate,
	).Scan(&subject.ID, &subject.UserID, &subject.Name, &subject.Description,
		&subject.ExamDate, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return &subject, nil
}

func (s *Store) GetSubject(userID, subjectID int64) (*models.Subject, error) {
	var subject models.Subject
	err := s.db.QueryRow(
		`SELECT id, user_id, name, description, exam_date, created_at, updated_at
		 FROM subjects WHERE id = $1 AND user_id = $2`,
		subjectID, userID,
	).Scan(&subject.ID, &subject.UserID, &subject.Name, &subject.Description,
		&subject.ExamDate, &subject.CreatedAt, &subject.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// ListSubjects returns the user's subjects with cached pass chance and
// material counts for the dashboard.
func (s *Store) ListSubjects(userID int64) ([]models.SubjectSummary, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.user_id, s.name, s.description, s.exam_date, s.created_at, s.updated_at,
		        pc.pass_chance_percent,
		        COUNT(m.id) AS material_count
		 FROM subjects s
		 LEFT JOIN subject_pass_chance pc ON pc.subject_id = s.id AND pc.user_id = s.user_id
		 LEFT JOIN materials m ON m.subject_id = s.id
		 WHERE s.user_id = $1
		 GROUP BY s.id, pc.pass_chance_percent
		 ORDER BY s.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var summaries []models.SubjectSummary
	for rows.Next() {
		var sum models.SubjectSummary
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Name, &sum.Description, &sum.ExamDate,
			&sum.CreatedAt, &sum.UpdatedAt, &sum.PassChancePercent, &sum.MaterialCount); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteSubject removes the subject; mastery, quizzes, and plants go with it
// via ON DELETE CASCADE.
func (s *Store) DeleteSubject(userID, subjectID int64) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM subjects WHERE id = $1 AND user_id = $2`,
		subjectID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete subject: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ── Materials ───────────────────────────────────────────

func (s *Store) AddMaterial(subjectID int64, req models.AddMaterialRequest) (*models.Material, error) {
	var m models.Material
	err := s.db.QueryRow(
		`INSERT INTO materials (subject_id, title, excerpt)
		 VALUES ($1, $2, $3)
		 RETURNING id, subject_id, title, excerpt, created_at`,
		subjectID, req.Title, req.Excerpt,
	).Scan(&m.ID, &m.SubjectID, &m.Title, &m.Excerpt, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add material: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMaterials(subjectID int64) ([]models.Material, error) {
	rows, err := s.db.Query(
		`SELECT id, subject_id, title, excerpt, created_at
		 FROM materials WHERE subject_id = $1
		 ORDER BY created_at DESC`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.SubjectID, &m.Title, &m.Excerpt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
