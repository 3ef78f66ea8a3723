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

// RecurringService expands a recurring transaction template into concrete
// instances and persists them as one batch.
type RecurringService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	nowFn     func() time.Time
}

func NewRecurringService(storage *storage.SQLiteRepository, publisher SyncPublisher) *RecurringService {
	return &RecurringService{
		storage:   storage,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// Expand validates the template, expands it per the frequency, and inserts
// every instance atomically. Either all instances land or none do.
func (s *RecurringService) Expand(ctx context.Context, userID string, template core.CreateTransaction, freq core.Frequency, endDate string) ([]core.Transaction, error) {
	now := s.nowFn()
	if err := template.Validate(now); err != nil {
		return nil, err
	}
	template = template.Normalize(now)

	instances, err := core.ExpandRecurring(template, freq, endDate, now)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}

	txs := make([]core.Transaction, len(instances))
	for i, inst := range instances {
		txs[i] = core.Transaction{
			ID:          uuid.NewString(),
			Description: inst.Description,
			Amount:      inst.Amount,
			Category:    inst.Category,
			Type:        inst.Type,
			Date:        inst.Date,
			CreatedAt:   now,
		}
	}

	if err := s.storage.CreateTransactions(ctx, userID, txs); err != nil {
		return nil, fmt.Errorf("save recurring batch: %w", err)
	}

	slog.InfoContext(ctx, "Expanded recurring transaction",
		"user_id", userID,
		"frequency", freq,
		"instances", len(txs))

	if s.publisher != nil {
		for _, tx := range txs {
			if err := s.publisher.PublishTransactionSync(ctx, tx.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to publish sync message",
					"id", tx.ID, "error", err)
			}
		}
	}

	return txs, nil
}
