package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pocketwise/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction(id, date string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: "Groceries",
		Amount:      42.5,
		Category:    "food",
		Type:        core.Expense,
		Date:        date,
		CreatedAt:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteRepository_Transactions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	tx1 := sampleTransaction("tx-1", "2024-06-01")
	tx2 := sampleTransaction("tx-2", "2024-06-10")
	tx2.Type = core.Income
	tx2.Description = "Allowance"

	if err := repo.CreateTransaction(ctx, "u1", tx1); err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if err := repo.CreateTransaction(ctx, "u1", tx2); err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if err := repo.CreateTransaction(ctx, "u2", sampleTransaction("tx-3", "2024-06-05")); err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}

	t.Run("list is user-scoped and newest first", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "u1")
		if err != nil {
			t.Fatalf("ListTransactions() error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d transactions, want 2", len(got))
		}
		if got[0].ID != "tx-2" || got[1].ID != "tx-1" {
			t.Errorf("order = [%s %s], want [tx-2 tx-1]", got[0].ID, got[1].ID)
		}
		if got[0].Type != core.Income {
			t.Errorf("Type = %s, want income", got[0].Type)
		}
		if !got[0].CreatedAt.Equal(tx2.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, tx2.CreatedAt)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetTransaction(ctx, "u1", "tx-1")
		if err != nil {
			t.Fatalf("GetTransaction() error: %v", err)
		}
		if got.Description != "Groceries" || got.Amount != 42.5 {
			t.Errorf("got %+v", got)
		}
		if _, err := repo.GetTransaction(ctx, "u2", "tx-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("cross-user GetTransaction() = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("soft delete hides from list but keeps tombstone", func(t *testing.T) {
		if err := repo.DeleteTransaction(ctx, "u1", "tx-1"); err != nil {
			t.Fatalf("DeleteTransaction() error: %v", err)
		}
		got, err := repo.ListTransactions(ctx, "u1")
		if err != nil {
			t.Fatalf("ListTransactions() error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "tx-2" {
			t.Errorf("after delete got %+v", got)
		}
		// Tombstone still resolvable by the sync worker.
		userID, tx, err := repo.FindTransaction(ctx, "tx-1")
		if err != nil {
			t.Fatalf("FindTransaction() error: %v", err)
		}
		if userID != "u1" || tx.ID != "tx-1" {
			t.Errorf("FindTransaction() = %s, %+v", userID, tx)
		}
		// Deleting again reports not found.
		if err := repo.DeleteTransaction(ctx, "u1", "tx-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteTransaction() = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestSQLiteRepository_CreateTransactionsBatch(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	batch := []core.Transaction{
		sampleTransaction("b-1", "2024-06-01"),
		sampleTransaction("b-2", "2024-06-02"),
		sampleTransaction("b-3", "2024-06-03"),
	}
	if err := repo.CreateTransactions(ctx, "u1", batch); err != nil {
		t.Fatalf("CreateTransactions() error: %v", err)
	}

	got, err := repo.ListTransactions(ctx, "u1")
	if err != nil || len(got) != 3 {
		t.Fatalf("ListTransactions() = %d rows, err %v; want 3", len(got), err)
	}

	t.Run("duplicate id rolls the whole batch back", func(t *testing.T) {
		bad := []core.Transaction{
			sampleTransaction("b-4", "2024-06-04"),
			sampleTransaction("b-1", "2024-06-05"), // already exists
		}
		if err := repo.CreateTransactions(ctx, "u1", bad); err == nil {
			t.Fatal("CreateTransactions() should fail on duplicate id")
		}
		got, err := repo.ListTransactions(ctx, "u1")
		if err != nil {
			t.Fatalf("ListTransactions() error: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d rows after failed batch, want 3", len(got))
		}
	})
}

func TestSQLiteRepository_Goals(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	goal := core.SavingsGoal{
		ID:           "g-1",
		Title:        "New bike",
		TargetAmount: 200,
		Category:     "transport",
		Deadline:     "2024-12-31",
		CreatedAt:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateGoal(ctx, "u1", goal); err != nil {
		t.Fatalf("CreateGoal() error: %v", err)
	}

	got, err := repo.GetGoal(ctx, "u1", "g-1")
	if err != nil {
		t.Fatalf("GetGoal() error: %v", err)
	}
	if got.Title != "New bike" || got.TargetAmount != 200 || got.Completed {
		t.Errorf("got %+v", got)
	}

	got.CurrentAmount = 200
	got.Completed = true
	if err := repo.UpdateGoal(ctx, "u1", got); err != nil {
		t.Fatalf("UpdateGoal() error: %v", err)
	}
	updated, err := repo.GetGoal(ctx, "u1", "g-1")
	if err != nil {
		t.Fatalf("GetGoal() error: %v", err)
	}
	if !updated.Completed || updated.CurrentAmount != 200 {
		t.Errorf("after update got %+v", updated)
	}

	goals, err := repo.ListGoals(ctx, "u1")
	if err != nil || len(goals) != 1 {
		t.Fatalf("ListGoals() = %d rows, err %v; want 1", len(goals), err)
	}

	if err := repo.DeleteGoal(ctx, "u1", "g-1"); err != nil {
		t.Fatalf("DeleteGoal() error: %v", err)
	}
	if err := repo.DeleteGoal(ctx, "u1", "g-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteGoal() = %v, want %v", err, ErrNotFound)
	}
	if err := repo.UpdateGoal(ctx, "u1", goal); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateGoal(deleted) = %v, want %v", err, ErrNotFound)
	}
}

func TestSQLiteRepository_Activities(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := core.LearningActivity{
		ID:          "a-1",
		Date:        time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Type:        core.ActivityQuiz,
		Description: "Completed onboarding quiz",
		Points:      50,
	}
	second := core.LearningActivity{
		ID:          "a-2",
		Date:        time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
		Type:        core.ActivityTransactionAdded,
		Description: "Added expense",
		Points:      5,
	}
	for _, a := range []core.LearningActivity{second, first} {
		if err := repo.CreateActivity(ctx, "u1", a); err != nil {
			t.Fatalf("CreateActivity() error: %v", err)
		}
	}

	got, err := repo.ListActivities(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActivities() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	if got[0].ID != "a-1" || got[1].ID != "a-2" {
		t.Errorf("order = [%s %s], want [a-1 a-2]", got[0].ID, got[1].ID)
	}
	if got[0].Type != core.ActivityQuiz || got[0].Points != 50 {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestSQLiteRepository_Profiles(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetProfile(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile(missing) = %v, want %v", err, ErrNotFound)
	}
	if err := repo.SetMonthlyBudget(ctx, "u1", 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetMonthlyBudget(missing) = %v, want %v", err, ErrNotFound)
	}

	p := Profile{
		UserID:         "u1",
		Age:            16,
		Goals:          []string{"save for college", "build emergency fund"},
		KnowledgeScore: 45,
		Level:          core.LevelSmartSpender,
	}
	if err := repo.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error: %v", err)
	}

	got, err := repo.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if got.Age != 16 || got.KnowledgeScore != 45 || got.Level != core.LevelSmartSpender {
		t.Errorf("got %+v", got)
	}
	if len(got.Goals) != 2 || got.Goals[0] != "save for college" {
		t.Errorf("Goals = %v", got.Goals)
	}

	if err := repo.SetMonthlyBudget(ctx, "u1", 250.5); err != nil {
		t.Fatalf("SetMonthlyBudget() error: %v", err)
	}
	got, err = repo.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if got.MonthlyBudget != 250.5 {
		t.Errorf("MonthlyBudget = %v, want 250.5", got.MonthlyBudget)
	}

	// Upsert replaces fields but keeps the row unique.
	p.KnowledgeScore = 60
	p.Level = core.LevelFinancePro
	if err := repo.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error: %v", err)
	}
	got, _ = repo.GetProfile(ctx, "u1")
	if got.KnowledgeScore != 60 || got.Level != core.LevelFinancePro {
		t.Errorf("after upsert got %+v", got)
	}
}
