package garden

import (
	"fmt"
	"log"
	"time"

	"github.com/studygarden/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// RecordQuizCompletion awards XP for a graded quiz, bumps the daily streak,
// updates completion counters, and regrows the subject's plant if a fresh
// pass chance is available. Returns the XP awarded.
func (s *Service) RecordQuizCompletion(userID, subjectID int64, score, total int, passChance *int) int {
	gar, err := s.store.GetOrCreateGarden(userID)
	if err != nil {
		log.Printf("WARN: get garden for user %d: %v", userID, err)
		return 0
	}

	if err := s.updateStreak(userID, gar); err != nil {
		log.Printf("WARN: update streak for user %d: %v", userID, err)
	}

	base := QuizXP(score, total)
	multiplier := StreakMultiplier(gar.CurrentStreak)
	awarded := ApplyStreakMultiplier(base, multiplier)

	if awarded > 0 {
		if err := s.store.AddXP(userID, awarded); err != nil {
			log.Printf("WARN: add XP for user %d: %v", userID, err)
		}
		s.store.LogXPEvent(userID, "quiz_complete", awarded, map[string]interface{}{
			"subject_id": subjectID,
			"base_xp":    base,
			"multiplier": multiplier,
			"score":      score,
			"total":      total,
		})
	}

	gar.QuizzesTotal++
	if total > 0 && score == total {
		gar.PerfectTotal++
	}
	if err := s.store.UpdateGarden(userID, gar); err != nil {
		log.Printf("WARN: update garden counters for user %d: %v", userID, err)
	}

	if passChance != nil {
		if err := s.store.UpsertPlant(userID, subjectID, StageForPassChance(*passChance)); err != nil {
			log.Printf("WARN: update plant for subject %d: %v", subjectID, err)
		}
	}

	return awarded
}

func (s *Service) updateStreak(userID int64, gar *models.UserGarden) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	if gar.LastActiveDate != nil {
		lastActive := gar.LastActiveDate.UTC().Truncate(24 * time.Hour)
		if lastActive.Equal(today) {
			return nil
		}

		daysSinceLast := int(today.Sub(lastActive).Hours() / 24)
		if daysSinceLast == 1 {
			gar.CurrentStreak++
		} else {
			gar.CurrentStreak = 1
		}
	} else {
		gar.CurrentStreak = 1
	}

	if gar.CurrentStreak > gar.LongestStreak {
		gar.LongestStreak = gar.CurrentStreak
	}
	gar.LastActiveDate = &today

	return s.store.UpdateGarden(userID, gar)
}

// SyncPlant recomputes a plant's stage from the latest pass chance. Used
// outside the quiz flow (e.g. after a manual recompute).
func (s *Service) SyncPlant(userID, subjectID int64, passChance int) error {
	if err := s.store.UpsertPlant(userID, subjectID, StageForPassChance(passChance)); err != nil {
		return fmt.Errorf("sync plant: %w", err)
	}
	return nil
}
