package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketwise/internal/core"
	"pocketwise/internal/storage"
)

func newGoalService(t *testing.T) *GoalService {
	t.Helper()
	svc := NewGoalService(testStorage(t))
	svc.nowFn = func() time.Time { return serviceNow }
	return svc
}

func TestGoalService_Create(t *testing.T) {
	svc := newGoalService(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "u1", core.SavingsGoal{
		Title:        "New bike",
		TargetAmount: 200,
		Category:     "transport",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if goal.ID == "" {
		t.Error("Create() should assign an id")
	}
	if goal.CurrentAmount != 0 || goal.Completed {
		t.Errorf("new goal = %+v, want zero progress", goal)
	}

	activities, _ := svc.storage.ListActivities(ctx, "u1")
	if len(activities) != 1 || activities[0].Type != core.ActivityGoalCreated || activities[0].Points != PointsGoalCreated {
		t.Errorf("activities = %+v", activities)
	}

	t.Run("rejects invalid goal", func(t *testing.T) {
		if _, err := svc.Create(ctx, "u1", core.SavingsGoal{Title: "", TargetAmount: 10}); !errors.Is(err, core.ErrEmptyGoalTitle) {
			t.Errorf("Create() = %v, want %v", err, core.ErrEmptyGoalTitle)
		}
		if _, err := svc.Create(ctx, "u1", core.SavingsGoal{Title: "x", TargetAmount: 0}); !errors.Is(err, core.ErrInvalidGoalTarget) {
			t.Errorf("Create() = %v, want %v", err, core.ErrInvalidGoalTarget)
		}
	})
}

func TestGoalService_Deposit(t *testing.T) {
	svc := newGoalService(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "u1", core.SavingsGoal{Title: "Laptop", TargetAmount: 200})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("partial deposit", func(t *testing.T) {
		got, err := svc.Deposit(ctx, "u1", goal.ID, 50)
		if err != nil {
			t.Fatalf("Deposit() error: %v", err)
		}
		if got.CurrentAmount != 50 || got.Completed {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("deposit beyond target caps and completes", func(t *testing.T) {
		got, err := svc.Deposit(ctx, "u1", goal.ID, 500)
		if err != nil {
			t.Fatalf("Deposit() error: %v", err)
		}
		if got.CurrentAmount != 200 || !got.Completed {
			t.Errorf("got %+v, want capped at 200 and completed", got)
		}
	})

	t.Run("activity awards", func(t *testing.T) {
		activities, _ := svc.storage.ListActivities(ctx, "u1")
		// goal created + 2 deposits + completion bonus
		var deposits, completions int
		for _, a := range activities {
			switch a.Type {
			case core.ActivityGoalDeposit:
				deposits++
				if a.Points != PointsGoalDeposit {
					t.Errorf("deposit points = %d, want %d", a.Points, PointsGoalDeposit)
				}
			case core.ActivityGoalCompleted:
				completions++
				if a.Points != PointsGoalCompleted {
					t.Errorf("completion points = %d, want %d", a.Points, PointsGoalCompleted)
				}
			}
		}
		if deposits != 2 || completions != 1 {
			t.Errorf("deposits = %d, completions = %d; want 2 and 1", deposits, completions)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		if _, err := svc.Deposit(ctx, "u1", goal.ID, 0); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("Deposit(0) = %v, want %v", err, core.ErrInvalidAmount)
		}
	})

	t.Run("missing goal", func(t *testing.T) {
		if _, err := svc.Deposit(ctx, "u1", "missing", 10); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Deposit(missing) = %v, want %v", err, storage.ErrNotFound)
		}
	})
}

func TestGoalService_Update(t *testing.T) {
	svc := newGoalService(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "u1", core.SavingsGoal{Title: "Trip", TargetAmount: 300})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	newTitle := "Summer trip"
	newCurrent := 500.0 // beyond target, must clamp
	got, err := svc.Update(ctx, "u1", goal.ID, GoalUpdate{Title: &newTitle, CurrentAmount: &newCurrent})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Title != "Summer trip" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.CurrentAmount != 300 {
		t.Errorf("CurrentAmount = %v, want clamped to 300", got.CurrentAmount)
	}

	badTarget := 0.0
	if _, err := svc.Update(ctx, "u1", goal.ID, GoalUpdate{TargetAmount: &badTarget}); !errors.Is(err, core.ErrInvalidGoalTarget) {
		t.Errorf("Update(bad target) = %v, want %v", err, core.ErrInvalidGoalTarget)
	}
}

func TestGoalService_ListAndUpcoming(t *testing.T) {
	svc := newGoalService(t)
	ctx := context.Background()

	seeds := []core.SavingsGoal{
		{Title: "Soon", TargetAmount: 100, Deadline: "2024-06-20"},
		{Title: "Distant", TargetAmount: 100, Deadline: "2024-12-31"},
		{Title: "No deadline", TargetAmount: 100},
	}
	for _, g := range seeds {
		if _, err := svc.Create(ctx, "u1", g); err != nil {
			t.Fatalf("Create(%s) error: %v", g.Title, err)
		}
	}

	goals, err := svc.List(ctx, "u1")
	if err != nil || len(goals) != 3 {
		t.Fatalf("List() = %d rows, err %v; want 3", len(goals), err)
	}

	upcoming, err := svc.Upcoming(ctx, "u1")
	if err != nil {
		t.Fatalf("Upcoming() error: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "Soon" {
		t.Errorf("Upcoming() = %+v, want just Soon", upcoming)
	}
}

func TestGoalService_Delete(t *testing.T) {
	svc := newGoalService(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "u1", core.SavingsGoal{Title: "Trip", TargetAmount: 300})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Delete(ctx, "u1", goal.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := svc.Delete(ctx, "u1", goal.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() = %v, want %v", err, storage.ErrNotFound)
	}
}
