package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pocketwise/internal/core"
	"pocketwise/internal/storage"
)

// OnboardingService runs the literacy quiz and manages the user profile.
type OnboardingService struct {
	storage   *storage.SQLiteRepository
	questions []core.QuizQuestion
	nowFn     func() time.Time
}

func NewOnboardingService(storage *storage.SQLiteRepository) *OnboardingService {
	return &OnboardingService{
		storage:   storage,
		questions: core.DefaultQuizQuestions,
		nowFn:     time.Now,
	}
}

// Questions returns the quiz question bank.
func (s *OnboardingService) Questions() []core.QuizQuestion {
	return s.questions
}

// Complete scores the quiz, derives the literacy level, persists the
// profile and logs the quiz activity.
func (s *OnboardingService) Complete(ctx context.Context, userID string, age int, goals []string, answers map[int]int) (core.OnboardingResult, error) {
	result, err := core.NewOnboardingResult(age, goals, s.questions, answers)
	if err != nil {
		return core.OnboardingResult{}, err
	}

	profile := storage.Profile{
		UserID:         userID,
		Age:            age,
		Goals:          goals,
		KnowledgeScore: result.KnowledgeScore,
		Level:          result.Level,
	}
	if existing, err := s.storage.GetProfile(ctx, userID); err == nil {
		profile.MonthlyBudget = existing.MonthlyBudget
		profile.CreatedAt = existing.CreatedAt
	}
	if err := s.storage.UpsertProfile(ctx, profile); err != nil {
		return core.OnboardingResult{}, fmt.Errorf("save profile: %w", err)
	}

	activity := core.LearningActivity{
		ID:          uuid.NewString(),
		Date:        s.nowFn(),
		Type:        core.ActivityQuiz,
		Description: "Completed the financial literacy quiz",
		Points:      result.KnowledgeScore,
	}
	if err := s.storage.CreateActivity(ctx, userID, activity); err != nil {
		slog.ErrorContext(ctx, "Failed to record quiz activity",
			"user_id", userID, "error", err)
	}

	return result, nil
}

// Profile returns the user's stored profile.
func (s *OnboardingService) Profile(ctx context.Context, userID string) (storage.Profile, error) {
	return s.storage.GetProfile(ctx, userID)
}

// SetMonthlyBudget stores the monthly budget. The first time a user sets
// a budget earns an activity award.
func (s *OnboardingService) SetMonthlyBudget(ctx context.Context, userID string, amount float64) error {
	if amount <= 0 {
		return core.ErrInvalidAmount
	}
	amount = core.RoundCents(amount)

	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	firstTime := profile.MonthlyBudget == 0

	if err := s.storage.SetMonthlyBudget(ctx, userID, amount); err != nil {
		return err
	}

	if firstTime {
		activity := core.LearningActivity{
			ID:          uuid.NewString(),
			Date:        s.nowFn(),
			Type:        core.ActivityBudgetSet,
			Description: "Set a monthly budget",
			Points:      PointsBudgetSet,
		}
		if err := s.storage.CreateActivity(ctx, userID, activity); err != nil {
			slog.ErrorContext(ctx, "Failed to record budget activity",
				"user_id", userID, "error", err)
		}
	}

	return nil
}
