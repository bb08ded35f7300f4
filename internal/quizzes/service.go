package quizzes

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/studygarden/backend/internal/garden"
	"github.com/studygarden/backend/internal/generator"
	"github.com/studygarden/backend/internal/mastery"
	"github.com/studygarden/backend/internal/models"
	"github.com/studygarden/backend/internal/subjects"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrQuizNotReady   = errors.New("quiz is not ready")
	ErrAlreadyGraded  = errors.New("attempt already completed")
	ErrInvalidAnswers = errors.New("invalid answer set")
	ErrNoMaterials    = errors.New("subject has no study materials")
)

const (
	defaultQuestionCount = 6
	maxQuestionCount     = 20
)

type Service struct {
	store     *Store
	subjects  *subjects.Store
	generator *generator.Generator
	mastery   *mastery.Service
	garden    *garden.Service
}

func NewService(store *Store, subjectStore *subjects.Store, gen *generator.Generator, masteryService *mastery.Service, gardenService *garden.Service) *Service {
	return &Service{
		store:     store,
		subjects:  subjectStore,
		generator: gen,
		mastery:   masteryService,
		garden:    gardenService,
	}
}

// ── Generation ──────────────────────────────────────────

// GenerateQuiz creates a quiz row, asks the model for questions grounded in
// the subject's materials, and persists the result. The quiz is marked
// failed (not deleted) when generation errors, so the client can retry.
func (s *Service) GenerateQuiz(ctx context.Context, userID, subjectID int64, req models.GenerateQuizRequest) (*models.Quiz, error) {
	subject, err := s.subjects.GetSubject(userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	if subject == nil {
		return nil, ErrNotFound
	}

	materials, err := s.subjects.ListMaterials(subjectID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	if len(materials) == 0 {
		return nil, ErrNoMaterials
	}

	count := req.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s practice quiz", subject.Name)
	}

	quiz, err := s.store.CreateQuiz(subjectID, title)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateQuizStatus(quiz.ID, models.QuizGenerating); err != nil {
		log.Printf("WARN: mark quiz %d generating: %v", quiz.ID, err)
	}

	weakConcepts := s.weakConcepts(userID, subjectID)

	generated, _, err := s.generator.GenerateQuiz(ctx, subject.Name, materials, weakConcepts, count)
	if err != nil {
		if ferr := s.store.FailQuiz(quiz.ID, err.Error()); ferr != nil {
			log.Printf("WARN: mark quiz %d failed: %v", quiz.ID, ferr)
		}
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	if err := s.store.SaveGeneratedQuestions(quiz.ID, generated.Questions, s.generator.ModelName()); err != nil {
		if ferr := s.store.FailQuiz(quiz.ID, "failed to save questions"); ferr != nil {
			log.Printf("WARN: mark quiz %d failed: %v", quiz.ID, ferr)
		}
		return nil, err
	}

	return s.store.GetQuizForUser(userID, quiz.ID)
}

// weakConcepts returns concept names sorted weakest-first, for steering
// generation toward what the user struggles with. Best effort.
func (s *Service) weakConcepts(userID, subjectID int64) []string {
	views, err := s.mastery.MasteryBreakdown(userID, subjectID)
	if err != nil {
		log.Printf("WARN: load mastery breakdown for subject %d: %v", subjectID, err)
		return nil
	}

	const weakThreshold = 0.5
	var weak []string
	for _, v := range views {
		if v.EffectiveMastery < weakThreshold {
			weak = append(weak, v.ConceptName)
		}
	}
	return weak
}

func (s *Service) GetQuiz(userID, quizID int64) (*models.Quiz, error) {
	quiz, err := s.store.GetQuizForUser(userID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	return quiz, nil
}

func (s *Service) ListQuizzes(userID, subjectID int64) ([]models.Quiz, error) {
	return s.store.ListQuizzes(userID, subjectID)
}

// ── Attempts ────────────────────────────────────────────

// StartAttempt opens a new attempt against a ready quiz. The attempt ID is
// a fresh UUID and later doubles as the mastery ingestion key.
func (s *Service) StartAttempt(userID, quizID int64) (*models.QuizAttempt, error) {
	quiz, err := s.store.GetQuizForUser(userID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	if quiz.Status != models.QuizReady {
		return nil, ErrQuizNotReady
	}

	return s.store.CreateAttempt(uuid.NewString(), quizID, userID)
}

// CompleteAttempt grades the submitted answers, persists the result, and
// feeds the per-question outcomes into mastery estimation. Grading never
// depends on the mastery pipeline: if ingestion fails the score still comes
// back, with the pass chance omitted.
func (s *Service) CompleteAttempt(userID int64, attemptID string, req models.CompleteAttemptRequest) (*models.CompleteAttemptResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNotFound
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAlreadyGraded
	}

	quiz, err := s.store.GetQuizForUser(userID, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}

	graded, score, err := gradeAnswers(quiz.Questions, req.Answers)
	if err != nil {
		return nil, err
	}
	total := len(quiz.Questions)

	times := make(map[int64]*float64, len(req.Answers))
	for _, a := range req.Answers {
		times[a.QuestionID] = a.TimeSpentSeconds
	}
	if err := s.store.SaveAttemptAnswers(attemptID, graded, times); err != nil {
		return nil, err
	}

	finished, err := s.store.FinishAttempt(attemptID, score, total)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, ErrAlreadyGraded
	}

	// The attempt UUID makes a retried ingest a no-op, so a client retrying
	// this request cannot double-count the quiz.
	observations := make([]models.Observation, len(graded))
	for i, g := range graded {
		observations[i] = models.Observation{ConceptName: g.ConceptName, Correct: g.Correct}
	}

	var passChance *int
	result, err := s.mastery.Ingest(userID, quiz.SubjectID, attemptID, observations)
	if err != nil {
		log.Printf("WARN: mastery ingest for attempt %s: %v", attemptID, err)
	}
	if result != nil {
		passChance = result.PassChancePercent
	}

	xp := 0
	if s.garden != nil {
		xp = s.garden.RecordQuizCompletion(userID, quiz.SubjectID, score, total, passChance)
	}

	return &models.CompleteAttemptResponse{
		AttemptID:         attemptID,
		Score:             score,
		Total:             total,
		Answers:           graded,
		PassChancePercent: passChance,
		XPAwarded:         xp,
	}, nil
}

// gradeAnswers checks every submitted answer against the question set. Every
// question must be answered exactly once.
func gradeAnswers(questions []models.QuizQuestion, answers []models.SubmittedAnswer) ([]models.GradedAnswer, int, error) {
	if len(answers) == 0 {
		return nil, 0, fmt.Errorf("%w: no answers submitted", ErrInvalidAnswers)
	}
	if len(answers) != len(questions) {
		return nil, 0, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidAnswers, len(questions), len(answers))
	}

	byID := make(map[int64]*models.QuizQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[int64]bool, len(answers))
	graded := make([]models.GradedAnswer, 0, len(answers))
	score := 0

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: question %d is not part of this quiz", ErrInvalidAnswers, a.QuestionID)
		}
		if seen[a.QuestionID] {
			return nil, 0, fmt.Errorf("%w: question %d answered twice", ErrInvalidAnswers, a.QuestionID)
		}
		seen[a.QuestionID] = true

		correct := a.SelectedChoiceID == q.CorrectChoiceID
		if correct {
			score++
		}
		graded = append(graded, models.GradedAnswer{
			QuestionID:       q.ID,
			ConceptName:      q.ConceptName,
			SelectedChoiceID: a.SelectedChoiceID,
			CorrectChoiceID:  q.CorrectChoiceID,
			Correct:          correct,
			Explanation:      q.Explanation,
		})
	}

	return graded, score, nil
}
