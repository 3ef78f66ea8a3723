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

// GoalService manages savings goals and their activity awards.
type GoalService struct {
	storage *storage.SQLiteRepository
	nowFn   func() time.Time
}

func NewGoalService(storage *storage.SQLiteRepository) *GoalService {
	return &GoalService{
		storage: storage,
		nowFn:   time.Now,
	}
}

// GoalUpdate carries the editable goal fields. Nil means leave unchanged.
type GoalUpdate struct {
	Title         *string  `json:"title,omitempty"`
	TargetAmount  *float64 `json:"target_amount,omitempty"`
	CurrentAmount *float64 `json:"current_amount,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Deadline      *string  `json:"deadline,omitempty"`
	Completed     *bool    `json:"completed,omitempty"`
}

// Create validates and persists a new goal; current amount starts at 0
// unless provided.
func (s *GoalService) Create(ctx context.Context, userID string, goal core.SavingsGoal) (core.SavingsGoal, error) {
	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	goal.ID = uuid.NewString()
	goal.CreatedAt = s.nowFn()
	goal = goal.ClampCurrent()
	goal.Completed = goal.CurrentAmount >= goal.TargetAmount

	if err := s.storage.CreateGoal(ctx, userID, goal); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save goal: %w", err)
	}

	s.logActivity(ctx, userID, core.ActivityGoalCreated,
		fmt.Sprintf("Created savings goal: %s", goal.Title), PointsGoalCreated)

	return goal, nil
}

// Update applies field edits and clamps the current amount back into
// range.
func (s *GoalService) Update(ctx context.Context, userID, id string, update GoalUpdate) (core.SavingsGoal, error) {
	goal, err := s.storage.GetGoal(ctx, userID, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	if update.Title != nil {
		goal.Title = *update.Title
	}
	if update.TargetAmount != nil {
		goal.TargetAmount = *update.TargetAmount
	}
	if update.CurrentAmount != nil {
		goal.CurrentAmount = *update.CurrentAmount
	}
	if update.Category != nil {
		goal.Category = *update.Category
	}
	if update.Deadline != nil {
		goal.Deadline = *update.Deadline
	}
	if update.Completed != nil {
		goal.Completed = *update.Completed
	}

	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	goal = goal.ClampCurrent()

	if err := s.storage.UpdateGoal(ctx, userID, goal); err != nil {
		return core.SavingsGoal{}, err
	}
	return goal, nil
}

// Deposit adds to a goal's current amount, capping at the target.
// Completing the goal earns a bonus award on top of the deposit award.
func (s *GoalService) Deposit(ctx context.Context, userID, id string, amount float64) (core.SavingsGoal, error) {
	if amount <= 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}

	goal, err := s.storage.GetGoal(ctx, userID, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	wasCompleted := goal.Completed
	goal = core.AddToGoal(goal, amount)

	if err := s.storage.UpdateGoal(ctx, userID, goal); err != nil {
		return core.SavingsGoal{}, err
	}

	s.logActivity(ctx, userID, core.ActivityGoalDeposit,
		fmt.Sprintf("Deposited into goal: %s", goal.Title), PointsGoalDeposit)

	if goal.Completed && !wasCompleted {
		s.logActivity(ctx, userID, core.ActivityGoalCompleted,
			fmt.Sprintf("Completed savings goal: %s", goal.Title), PointsGoalCompleted)
	}

	return goal, nil
}

// Delete removes a goal.
func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	return s.storage.DeleteGoal(ctx, userID, id)
}

// List returns all of the user's goals.
func (s *GoalService) List(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	return s.storage.ListGoals(ctx, userID)
}

// Upcoming returns the top goals with deadlines in the next 30 days.
func (s *GoalService) Upcoming(ctx context.Context, userID string) ([]core.UpcomingGoal, error) {
	goals, err := s.storage.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.UpcomingDeadlines(goals, s.nowFn()), nil
}

func (s *GoalService) logActivity(ctx context.Context, userID string, typ core.ActivityType, desc string, points int) {
	activity := core.LearningActivity{
		ID:          uuid.NewString(),
		Date:        s.nowFn(),
		Type:        typ,
		Description: desc,
		Points:      points,
	}
	if err := s.storage.CreateActivity(ctx, userID, activity); err != nil {
		slog.ErrorContext(ctx, "Failed to record activity",
			"user_id", userID, "error", err)
	}
}
