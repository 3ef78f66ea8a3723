package clouddb

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
)

var ErrRecordNotFound = errors.New("record not found")

// MemoryStore is an in-process RecordStore used by tests and by
// deployments without a hosted backend configured.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Record)}
}

func (s *MemoryStore) Insert(_ context.Context, table string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], cloneRecord(rec))
	return nil
}

func (s *MemoryStore) Query(_ context.Context, table string, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, rec := range s.tables[table] {
		if matches(rec, q.Filters) {
			out = append(out, cloneRecord(rec))
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compare(out[i][q.OrderBy], out[j][q.OrderBy]) < 0
			if q.Descending {
				return !less && compare(out[i][q.OrderBy], out[j][q.OrderBy]) != 0
			}
			return less
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, table string, id string, fields Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.tables[table] {
		if rec.ID() == id {
			for k, v := range fields {
				rec[k] = v
			}
			return nil
		}
	}
	return ErrRecordNotFound
}

func (s *MemoryStore) Delete(_ context.Context, table string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	for i, rec := range rows {
		if rec.ID() == id {
			s.tables[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrRecordNotFound
}

func matches(rec Record, filters []Filter) bool {
	for _, f := range filters {
		c := compare(rec[f.Column], f.Value)
		switch f.Op {
		case OpEq:
			if c != 0 {
				return false
			}
		case OpGte:
			if c < 0 {
				return false
			}
		case OpLte:
			if c > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compare orders two column values numerically when both parse as floats,
// lexicographically otherwise.
func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
