package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"pocketwise/internal/core"
	"pocketwise/internal/snapshot"
)

func newExportService(t *testing.T, pub SyncPublisher) *ExportService {
	t.Helper()
	svc := NewExportService(testStorage(t), pub)
	svc.nowFn = func() time.Time { return serviceNow }
	return svc
}

func seedExport(t *testing.T, svc *ExportService) {
	t.Helper()
	ctx := context.Background()
	txs := []core.Transaction{
		{ID: "t-1", Description: "Allowance", Amount: 100, Category: "allowance", Type: core.Income, Date: "2024-06-01", CreatedAt: serviceNow},
		{ID: "t-2", Description: "Lunch", Amount: 12.5, Category: "food", Type: core.Expense, Date: "2024-06-05", CreatedAt: serviceNow},
	}
	for _, tx := range txs {
		if err := svc.storage.CreateTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("CreateTransaction() error: %v", err)
		}
	}
}

func TestExportService_ExportCSV(t *testing.T) {
	svc := newExportService(t, nil)
	seedExport(t, svc)

	text, filename, err := svc.ExportCSV(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}
	if filename != "transactions_20240615.csv" {
		t.Errorf("filename = %s", filename)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != `"Date","Description","Category","Type","Amount"` {
		t.Errorf("header = %s", lines[0])
	}
	// Listing is newest first.
	if !strings.Contains(lines[1], "Lunch") || !strings.Contains(lines[2], "Allowance") {
		t.Errorf("rows = %v", lines[1:])
	}
}

func TestExportService_ExportXLSX(t *testing.T) {
	svc := newExportService(t, nil)
	seedExport(t, svc)

	data, filename, err := svc.ExportXLSX(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ExportXLSX() error: %v", err)
	}
	if filename != "transactions_20240615.xlsx" {
		t.Errorf("filename = %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheetName)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][4] != "Amount" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Lunch" || rows[2][1] != "Allowance" {
		t.Errorf("rows = %v", rows[1:])
	}
}

func TestExportService_ImportCSV(t *testing.T) {
	pub := &fakePublisher{}
	svc := newExportService(t, pub)
	ctx := context.Background()

	csv := strings.Join([]string{
		`"Date","Description","Category","Type","Amount"`,
		`"2024-06-01","Allowance","allowance","income","100"`,
		`"2024-06-05","Lunch","food","expense","12.50"`,
		`"2024-06-06","","food","expense","5"`,        // missing description
		`"2024-06-07","Snack","food","expense","abc"`, // bad amount parses to 0
	}, "\n")

	report, err := svc.ImportCSV(ctx, "u1", csv)
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if report.Imported != 2 {
		t.Errorf("Imported = %d, want 2", report.Imported)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("Skipped = %+v, want 2 rows", report.Skipped)
	}
	if report.Skipped[0].Line != 4 || report.Skipped[1].Line != 5 {
		t.Errorf("skipped lines = %d, %d; want 4 and 5", report.Skipped[0].Line, report.Skipped[1].Line)
	}

	stored, err := svc.storage.ListTransactions(ctx, "u1")
	if err != nil || len(stored) != 2 {
		t.Fatalf("stored %d rows, err %v; want 2", len(stored), err)
	}
	if len(pub.synced) != 2 {
		t.Errorf("published %d sync messages, want 2", len(pub.synced))
	}
}

func TestExportService_ImportCSV_Empty(t *testing.T) {
	svc := newExportService(t, nil)

	report, err := svc.ImportCSV(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if report.Imported != 0 || len(report.Skipped) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestExportService_Backup(t *testing.T) {
	svc := newExportService(t, nil)
	seedExport(t, svc)
	ctx := context.Background()

	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	svc.AttachLocalStore(store)

	if err := svc.storage.CreateActivity(ctx, "u1", core.LearningActivity{
		ID: "a-1", Date: serviceNow, Type: core.ActivityTransactionAdded, Description: "x", Points: 5,
	}); err != nil {
		t.Fatalf("CreateActivity() error: %v", err)
	}

	state, err := svc.Backup(ctx, "u1")
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	if len(state.Transactions) != 2 || len(state.LearningActivities) != 1 {
		t.Errorf("state = %d txs, %d activities", len(state.Transactions), len(state.LearningActivities))
	}
	if state.LastActiveDate != "2024-06-15" {
		t.Errorf("LastActiveDate = %s", state.LastActiveDate)
	}

	// The attached store got the same state.
	loaded := store.Load()
	if len(loaded.Transactions) != 2 {
		t.Errorf("local store has %d transactions, want 2", len(loaded.Transactions))
	}
}

func TestExportService_Restore(t *testing.T) {
	pub := &fakePublisher{}
	source := newExportService(t, nil)
	seedExport(t, source)
	ctx := context.Background()

	state, err := source.Backup(ctx, "u1")
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	state.SavingsGoals = []core.SavingsGoal{
		{ID: "old-id", Title: "Bike", TargetAmount: 200, CurrentAmount: 50},
	}
	data, err := snapshot.Serialize(state)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}

	dest := newExportService(t, pub)
	report, err := dest.Restore(ctx, "u2", data)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if report.Transactions != 2 || report.Goals != 1 {
		t.Errorf("report = %+v", report)
	}

	txs, _ := dest.storage.ListTransactions(ctx, "u2")
	if len(txs) != 2 {
		t.Fatalf("restored %d transactions, want 2", len(txs))
	}
	if len(pub.synced) != 2 {
		t.Errorf("published %d sync messages, want 2", len(pub.synced))
	}

	goals, _ := dest.storage.ListGoals(ctx, "u2")
	if len(goals) != 1 || goals[0].ID == "old-id" {
		t.Errorf("goals = %+v, want one goal with a fresh id", goals)
	}
}

func TestExportService_Restore_MalformedBlob(t *testing.T) {
	svc := newExportService(t, nil)

	report, err := svc.Restore(context.Background(), "u1", []byte("{not json"))
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if report != (RestoreReport{}) {
		t.Errorf("report = %+v, want empty for malformed input", report)
	}
}
