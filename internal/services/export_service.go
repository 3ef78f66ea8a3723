package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"pocketwise/internal/core"
	"pocketwise/internal/csvio"
	"pocketwise/internal/snapshot"
	"pocketwise/internal/storage"
)

const xlsxSheetName = "Transactions"

// ImportReport summarizes a CSV import: how many rows landed and which
// were skipped, with reasons.
type ImportReport struct {
	Imported int                `json:"imported"`
	Skipped  []csvio.SkippedRow `json:"skipped"`
}

// ExportService renders transactions to CSV/XLSX and imports CSV files.
type ExportService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	local     *snapshot.Store
	nowFn     func() time.Time
}

func NewExportService(storage *storage.SQLiteRepository, publisher SyncPublisher) *ExportService {
	return &ExportService{
		storage:   storage,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// ExportCSV renders the user's transactions as CSV text plus a suggested
// filename.
func (s *ExportService) ExportCSV(ctx context.Context, userID string) (string, string, error) {
	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("list transactions: %w", err)
	}
	return csvio.Encode(txs), csvio.Filename(s.nowFn()), nil
}

// ExportXLSX renders the user's transactions as a single-sheet workbook
// with the same columns as the CSV export.
func (s *ExportService) ExportXLSX(ctx context.Context, userID string) ([]byte, string, error) {
	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(csvio.Columns))
	for i, c := range csvio.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("cell name: %w", err)
		}
		row := []any{tx.Date, tx.Description, tx.Category, string(tx.Type), tx.Amount}
		if err := f.SetSheetRow(xlsxSheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("render workbook: %w", err)
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", s.nowFn().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// ImportCSV parses CSV text, persists the valid rows as one batch and
// reports the skipped rows. Invalid rows never abort the import.
func (s *ExportService) ImportCSV(ctx context.Context, userID, text string) (ImportReport, error) {
	now := s.nowFn()
	inputs, skipped := csvio.Decode(text, now)

	report := ImportReport{Skipped: skipped}
	if len(inputs) == 0 {
		return report, nil
	}

	txs := make([]core.Transaction, len(inputs))
	for i, input := range inputs {
		txs[i] = core.Transaction{
			ID:          uuid.NewString(),
			Description: input.Description,
			Amount:      input.Amount,
			Category:    input.Category,
			Type:        input.Type,
			Date:        input.Date,
			CreatedAt:   now,
		}
	}

	if err := s.storage.CreateTransactions(ctx, userID, txs); err != nil {
		return ImportReport{}, fmt.Errorf("save imported transactions: %w", err)
	}
	report.Imported = len(txs)

	if s.publisher != nil {
		for _, tx := range txs {
			if err := s.publisher.PublishTransactionSync(ctx, tx.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to publish sync message",
					"id", tx.ID, "error", err)
			}
		}
	}

	return report, nil
}

// AttachLocalStore enables best-effort local persistence of backups. Nil
// (the default) disables it.
func (s *ExportService) AttachLocalStore(store *snapshot.Store) {
	s.local = store
}

// Backup assembles the user's full state into one snapshot. When a local
// store is attached, the snapshot is also written to disk; a failed write
// only logs, the caller still gets the state.
func (s *ExportService) Backup(ctx context.Context, userID string) (snapshot.State, error) {
	state := snapshot.Empty()

	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return snapshot.State{}, fmt.Errorf("list transactions: %w", err)
	}
	goals, err := s.storage.ListGoals(ctx, userID)
	if err != nil {
		return snapshot.State{}, fmt.Errorf("list goals: %w", err)
	}
	activities, err := s.storage.ListActivities(ctx, userID)
	if err != nil {
		return snapshot.State{}, fmt.Errorf("list activities: %w", err)
	}

	if txs != nil {
		state.Transactions = txs
	}
	if goals != nil {
		state.SavingsGoals = goals
	}
	if activities != nil {
		state.LearningActivities = activities
		state.LastActiveDate = activities[len(activities)-1].Date.Format(core.DateLayout)
	}

	if profile, err := s.storage.GetProfile(ctx, userID); err == nil {
		state.MonthlyBudget = profile.MonthlyBudget
	}

	if s.local != nil {
		if err := s.local.Save(state); err != nil {
			slog.ErrorContext(ctx, "Failed to persist backup locally",
				"user_id", userID, "error", err)
		}
	}

	return state, nil
}

// RestoreReport counts what a restore brought back.
type RestoreReport struct {
	Transactions int `json:"transactions"`
	Goals        int `json:"goals"`
	Activities   int `json:"activities"`
}

// Restore replays a serialized snapshot into the user's account. Restored
// rows get fresh ids so a restore never collides with existing data, and
// restored transactions flow through the sync queue like any other write.
func (s *ExportService) Restore(ctx context.Context, userID string, data []byte) (RestoreReport, error) {
	state := snapshot.Deserialize(data)
	now := s.nowFn()
	var report RestoreReport

	if len(state.Transactions) > 0 {
		txs := make([]core.Transaction, len(state.Transactions))
		for i, tx := range state.Transactions {
			tx.ID = uuid.NewString()
			if tx.CreatedAt.IsZero() {
				tx.CreatedAt = now
			}
			txs[i] = tx
		}
		if err := s.storage.CreateTransactions(ctx, userID, txs); err != nil {
			return RestoreReport{}, fmt.Errorf("restore transactions: %w", err)
		}
		report.Transactions = len(txs)

		if s.publisher != nil {
			for _, tx := range txs {
				if err := s.publisher.PublishTransactionSync(ctx, tx.ID); err != nil {
					slog.ErrorContext(ctx, "Failed to publish sync message",
						"id", tx.ID, "error", err)
				}
			}
		}
	}

	for _, goal := range state.SavingsGoals {
		goal.ID = uuid.NewString()
		if goal.CreatedAt.IsZero() {
			goal.CreatedAt = now
		}
		if err := s.storage.CreateGoal(ctx, userID, goal); err != nil {
			return report, fmt.Errorf("restore goal %q: %w", goal.Title, err)
		}
		report.Goals++
	}

	for _, activity := range state.LearningActivities {
		activity.ID = uuid.NewString()
		if err := s.storage.CreateActivity(ctx, userID, activity); err != nil {
			return report, fmt.Errorf("restore activity %q: %w", activity.Description, err)
		}
		report.Activities++
	}

	if state.MonthlyBudget > 0 {
		if _, err := s.storage.GetProfile(ctx, userID); err == nil {
			if err := s.storage.SetMonthlyBudget(ctx, userID, state.MonthlyBudget); err != nil {
				slog.WarnContext(ctx, "Could not restore monthly budget",
					"user_id", userID, "error", err)
			}
		}
	}

	return report, nil
}
