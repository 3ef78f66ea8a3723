package clouddb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore is a RecordStore persisted to a single JSON file. It wraps a
// MemoryStore for querying and rewrites the file after each mutation, so
// the sync worker's mirror survives restarts without a hosted backend.
type FileStore struct {
	mem  *MemoryStore
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s := &FileStore{mem: NewMemoryStore(), path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	var tables map[string][]Record
	if err := json.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parse store file %s: %w", s.path, err)
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	for table, rows := range tables {
		s.mem.tables[table] = rows
	}
	return nil
}

// flush writes the full table set to disk via a temp-file rename, so a
// crash mid-write never leaves a truncated store behind.
func (s *FileStore) flush() error {
	s.mem.mu.Lock()
	data, err := json.MarshalIndent(s.mem.tables, "", "  ")
	s.mem.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *FileStore) Insert(ctx context.Context, table string, rec Record) error {
	if err := s.mem.Insert(ctx, table, rec); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileStore) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	return s.mem.Query(ctx, table, q)
}

func (s *FileStore) Update(ctx context.Context, table string, id string, fields Record) error {
	if err := s.mem.Update(ctx, table, id, fields); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileStore) Delete(ctx context.Context, table string, id string) error {
	if err := s.mem.Delete(ctx, table, id); err != nil {
		return err
	}
	return s.flush()
}
