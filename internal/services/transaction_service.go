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

// SyncPublisher is the slice of the AMQP client the services need. A nil
// publisher means cloud sync is not configured and is skipped silently.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

// Activity point awards.
const (
	PointsIncomeAdded   = 10
	PointsExpenseAdded  = 5
	PointsGoalCreated   = 20
	PointsGoalCompleted = 50
	PointsGoalDeposit   = 10
	PointsBudgetSet     = 15
)

// TransactionService orchestrates transaction operations across SQLite
// and AMQP.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	nowFn     func() time.Time
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// Create validates, normalizes and persists a transaction, logs the
// activity award and publishes a sync message.
func (s *TransactionService) Create(ctx context.Context, userID string, input core.CreateTransaction) (core.Transaction, error) {
	now := s.nowFn()
	if err := input.Validate(now); err != nil {
		return core.Transaction{}, err
	}
	input = input.Normalize(now)

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Type:        input.Type,
		Date:        input.Date,
		CreatedAt:   now,
	}

	// Save to SQLite first (fast, reliable)
	if err := s.storage.CreateTransaction(ctx, userID, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.recordActivity(ctx, userID, tx)

	// Publish async sync message (non-blocking)
	if err := s.publishSync(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", tx.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return tx, nil
}

// Delete soft-deletes a transaction and publishes a tombstone message.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request - transaction is deleted locally
	}

	return nil
}

// List returns the user's transactions, newest date first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID)
}

// ListMonth returns the user's transactions for one calendar month.
func (s *TransactionService) ListMonth(ctx context.Context, userID string, year, month int) ([]core.Transaction, error) {
	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.FilterMonth(txs, year, month), nil
}

// Stats aggregates the user's transactions over an optional inclusive
// date range.
func (s *TransactionService) Stats(ctx context.Context, userID, start, end string) (core.Summary, error) {
	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs, start, end), nil
}

// CategoryBreakdown returns per-category percentages for one month and
// transaction type.
func (s *TransactionService) CategoryBreakdown(ctx context.Context, userID string, typ core.TransactionType, year, month int) ([]core.CategoryShare, error) {
	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.CategoryPercentages(core.FilterMonth(txs, year, month), typ), nil
}

func (s *TransactionService) recordActivity(ctx context.Context, userID string, tx core.Transaction) {
	points := PointsExpenseAdded
	if tx.Type == core.Income {
		points = PointsIncomeAdded
	}
	activity := core.LearningActivity{
		ID:          uuid.NewString(),
		Date:        s.nowFn(),
		Type:        core.ActivityTransactionAdded,
		Description: fmt.Sprintf("Added %s: %s", tx.Type, tx.Description),
		Points:      points,
	}
	if err := s.storage.CreateActivity(ctx, userID, activity); err != nil {
		slog.ErrorContext(ctx, "Failed to record activity",
			"user_id", userID, "error", err)
	}
}

func (s *TransactionService) publishSync(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id)
}

func (s *TransactionService) publishDelete(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishTransactionDelete(ctx, id)
}
