package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pocketwise/internal/amqp"
	"pocketwise/internal/clouddb"
	"pocketwise/internal/core"
	"pocketwise/internal/storage"
)

// CloudTable is the hosted-store table transactions are mirrored into.
const CloudTable = "transactions"

// SyncWorker mirrors locally saved transactions into the hosted record
// store. It consumes ids from the sync queue, reads the full row from
// SQLite, and upserts (or deletes) the cloud copy.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	cloud     clouddb.RecordStore
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, cloud clouddb.RecordStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		cloud:     cloud,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one message from the sync queue. Returning
// an error requeues the message, so unrecoverable situations (the row no
// longer exists locally) are logged and dropped instead.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"deleted", msg.Deleted)

	if msg.Deleted {
		return w.deleteFromCloud(ctx, msg.ID)
	}

	userID, tx, err := w.storage.FindTransaction(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction vanished before sync, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", msg.ID, err)
	}

	return w.upsert(ctx, userID, tx)
}

func (w *SyncWorker) deleteFromCloud(ctx context.Context, id string) error {
	err := w.cloud.Delete(ctx, CloudTable, id)
	if errors.Is(err, clouddb.ErrRecordNotFound) {
		slog.DebugContext(ctx, "Cloud record already gone", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete cloud record %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Deleted transaction from cloud", "id", id)
	return nil
}

func (w *SyncWorker) upsert(ctx context.Context, userID string, tx core.Transaction) error {
	rec := toRecord(userID, tx)

	err := w.cloud.Update(ctx, CloudTable, tx.ID, rec)
	if errors.Is(err, clouddb.ErrRecordNotFound) {
		err = w.cloud.Insert(ctx, CloudTable, rec)
	}
	if err != nil {
		return fmt.Errorf("upsert cloud record %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Synced transaction to cloud",
		"id", tx.ID,
		"user_id", userID,
		"amount", tx.Amount)
	return nil
}

// ResyncUser pushes every live transaction of one user to the cloud store
// in batches. It is the recovery path for queue outages.
func (w *SyncWorker) ResyncUser(ctx context.Context, userID string) error {
	txs, err := w.storage.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		slog.InfoContext(ctx, "Nothing to resync", "user_id", userID)
		return nil
	}

	synced := 0
	for start := 0; start < len(txs); start += w.batchSize {
		end := min(start+w.batchSize, len(txs))
		for _, tx := range txs[start:end] {
			if err := w.upsert(ctx, userID, tx); err != nil {
				slog.ErrorContext(ctx, "Resync failed for transaction",
					"id", tx.ID, "error", err)
				continue
			}
			synced++
		}
		slog.InfoContext(ctx, "Resync batch done",
			"user_id", userID,
			"processed", end,
			"total", len(txs))
	}

	slog.InfoContext(ctx, "Resync completed",
		"user_id", userID,
		"synced", synced,
		"total", len(txs))
	return nil
}

func toRecord(userID string, tx core.Transaction) clouddb.Record {
	return clouddb.Record{
		"id":          tx.ID,
		"user_id":     userID,
		"description": tx.Description,
		"amount":      core.FormatAmount(tx.Amount),
		"category":    tx.Category,
		"type":        string(tx.Type),
		"date":        tx.Date,
		"created_at":  tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
