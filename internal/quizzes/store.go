package quizzes

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/studygarden/backend/internal/generator"
	"github.com/studygarden/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Quiz Lifecycle ──────────────────────────────────────

func (s *Store) CreateQuiz(subjectID int64, title string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.QueryRow(
		`INSERT INTO quizzes (subject_id, title, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, subject_id, title, status, question_count, created_at`,
		subjectID, title, models.QuizPending,
	).Scan(&quiz.ID, &quiz.SubjectID, &quiz.Title, &quiz.Status, &quiz.QuestionCount, &quiz.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &quiz, nil
}

func (s *Store) UpdateQuizStatus(quizID int64, status models.QuizStatus) error {
	_, err := s.db.Exec(`UPDATE quizzes SET status = $1 WHERE id = $2`, status, quizID)
	return err
}

func (s *Store) FailQuiz(quizID int64, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE quizzes SET status = $1, error_message = $2 WHERE id = $3`,
		models.QuizFailed, errMsg, quizID,
	)
	return err
}

// SaveGeneratedQuestions persists a generated question set in one transaction
// and flips the quiz to ready.
func (s *Store) SaveGeneratedQuestions(quizID int64, questions []generator.GeneratedQuestion, modelUsed string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, q := range questions {
		var questionID int64
		err := tx.QueryRow(
			`INSERT INTO quiz_questions (quiz_id, concept_name, prompt, correct_choice_id, explanation, position)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			quizID, q.Concept, q.Prompt, q.CorrectChoiceID, q.Explanation, i,
		).Scan(&questionID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i+1, err)
		}

		for _, c := range q.Choices {
			if _, err := tx.Exec(
				`INSERT INTO quiz_choices (question_id, choice_id, choice_text)
				 VALUES ($1, $2, $3)`,
				questionID, c.ChoiceID, c.Text,
			); err != nil {
				return fmt.Errorf("insert choice %s for question %d: %w", c.ChoiceID, i+1, err)
			}
		}
	}

	if _, err := tx.Exec(
		`UPDATE quizzes SET status = $1, question_count = $2, model_used = $3 WHERE id = $4`,
		models.QuizReady, len(questions), modelUsed, quizID,
	); err != nil {
		return fmt.Errorf("mark quiz ready: %w", err)
	}

	return tx.Commit()
}

// GetQuizForUser loads a quiz with its questions and choices, scoped to the
// subject owner. Correct answers stay server-side (the JSON tag hides them).
func (s *Store) GetQuizForUser(userID, quizID int64) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.QueryRow(
		`SELECT q.id, q.subject_id, q.title, q.status, q.question_count, q.model_used, q.error_message, q.created_at
		 FROM quizzes q
		 JOIN subjects s ON s.id = q.subject_id
		 WHERE q.id = $1 AND s.user_id = $2`,
		quizID, userID,
	).Scan(&quiz.ID, &quiz.SubjectID, &quiz.Title, &quiz.Status, &quiz.QuestionCount,
		&quiz.ModelUsed, &quiz.ErrorMessage, &quiz.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	questions, err := s.getQuestions(quizID)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions
	return &quiz, nil
}

func (s *Store) getQuestions(quizID int64) ([]models.QuizQuestion, error) {
	rows, err := s.db.Query(
		`SELECT id, quiz_id, concept_name, prompt, correct_choice_id, explanation, position
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY position`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuizQuestion
	for rows.Next() {
		var q models.QuizQuestion
		if err := rows.Scan(&q.ID, &q.QuizID, &q.ConceptName, &q.Prompt,
			&q.CorrectChoiceID, &q.Explanation, &q.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		choices, err := s.getChoices(questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Choices = choices
	}
	return questions, nil
}

func (s *Store) getChoices(questionID int64) ([]models.QuizChoice, error) {
	rows, err := s.db.Query(
		`SELECT choice_id, choice_text FROM quiz_choices
		 WHERE question_id = $1 ORDER BY choice_id`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get choices: %w", err)
	}
	defer rows.Close()

	var choices []models.QuizChoice
	for rows.Next() {
		var c models.QuizChoice
		if err := rows.Scan(&c.ChoiceID, &c.Text); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

func (s *Store) ListQuizzes(userID, subjectID int64) ([]models.Quiz, error) {
	rows, err := s.db.Query(
		`SELECT q.id, q.subject_id, q.title, q.status, q.question_count, q.model_used, q.error_message, q.created_at
		 FROM quizzes q
		 JOIN subjects s ON s.id = q.subject_id
		 WHERE q.subject_id = $1 AND s.user_id = $2
		 ORDER BY q.created_at DESC`,
		subjectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.Title, &q.Status, &q.QuestionCount,
			&q.ModelUsed, &q.ErrorMessage, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// ── Attempts ────────────────────────────────────────────

func (s *Store) CreateAttempt(attemptID string, quizID, userID int64) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	err := s.db.QueryRow(
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, quiz_id, user_id, status, started_at`,
		attemptID, quizID, userID, models.AttemptInProgress,
	).Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &a.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return &a, nil
}

func (s *Store) GetAttempt(attemptID string, userID int64) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	err := s.db.QueryRow(
		`SELECT id, quiz_id, user_id, status, score, total, started_at, completed_at
		 FROM quiz_attempts WHERE id = $1 AND user_id = $2`,
		attemptID, userID,
	).Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &a.Score, &a.Total, &a.StartedAt, &a.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return &a, nil
}

// FinishAttempt records the grade, conditionally on the attempt still being
// in progress. Returns false if it was already completed.
func (s *Store) FinishAttempt(attemptID string, score, total int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE quiz_attempts
		 SET status = $1, score = $2, total = $3, completed_at = $4
		 WHERE id = $5 AND status = $6`,
		models.AttemptCompleted, score, total, time.Now(), attemptID, models.AttemptInProgress,
	)
	if err != nil {
		return false, fmt.Errorf("finish attempt: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) SaveAttemptAnswers(attemptID string, graded []models.GradedAnswer, times map[int64]*float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, g := range graded {
		if _, err := tx.Exec(
			`INSERT INTO attempt_answers (attempt_id, question_id, selected_choice_id, correct, time_spent_seconds)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (attempt_id, question_id) DO NOTHING`,
			attemptID, g.QuestionID, g.SelectedChoiceID, g.Correct, times[g.QuestionID],
		); err != nil {
			return fmt.Errorf("save answer for question %d: %w", g.QuestionID, err)
		}
	}
	return tx.Commit()
}
