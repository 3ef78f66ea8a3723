package clouddb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cloud.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return s, path
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, "transactions", Record{"id": "1", "amount": "100"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := s.Insert(ctx, "transactions", Record{"id": "2", "amount": "40"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := s.Update(ctx, "transactions", "2", Record{"amount": "45"}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error: %v", err)
	}
	got, err := reopened.Query(ctx, "transactions", Query{OrderBy: "id"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records after reopen, want 2", len(got))
	}
	if got[1]["amount"] != "45" {
		t.Errorf("updated amount = %s, want 45", got[1]["amount"])
	}
}

func TestFileStore_DeleteRemovesFromDisk(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, "transactions", Record{"id": "1"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := s.Delete(ctx, "transactions", "1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, "transactions", "1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() = %v, want %v", err, ErrRecordNotFound)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error: %v", err)
	}
	got, _ := reopened.Query(ctx, "transactions", Query{})
	if len(got) != 0 {
		t.Errorf("got %d records after reopen, want 0", len(got))
	}
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s, _ := newFileStore(t)
	got, err := s.Query(context.Background(), "transactions", Query{})
	if err != nil || len(got) != 0 {
		t.Errorf("Query() = %+v, err %v; want empty", got, err)
	}
}

func TestFileStore_CorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Error("NewFileStore() accepted corrupt file")
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore(MemoryBackend, ""); err != nil {
		t.Errorf("NewStore(memory) error: %v", err)
	}
	if _, err := NewStore(FileBackend, filepath.Join(t.TempDir(), "cloud.json")); err != nil {
		t.Errorf("NewStore(file) error: %v", err)
	}
	if _, err := NewStore(FileBackend, ""); err == nil {
		t.Error("NewStore(file, \"\") should fail")
	}
	if _, err := NewStore("sheets", ""); err == nil {
		t.Error("NewStore(sheets) should fail")
	}
	if BackendType("memory").IsValid() != true || BackendType("bogus").IsValid() {
		t.Error("IsValid() misclassifies backend types")
	}
}
