package clouddb

import (
	"context"
	"errors"
	"testing"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()
	rows := []Record{
		{"id": "1", "user_id": "u1", "date": "2024-06-01", "amount": "100"},
		{"id": "2", "user_id": "u1", "date": "2024-06-10", "amount": "40"},
		{"id": "3", "user_id": "u2", "date": "2024-06-05", "amount": "9.5"},
	}
	for _, r := range rows {
		if err := s.Insert(ctx, "transactions", r); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}
	return s
}

func TestMemoryStore_QueryFilters(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   Query
		wantIDs []string
	}{
		{
			name:    "equals on user",
			query:   Query{Filters: []Filter{{Column: "user_id", Op: OpEq, Value: "u1"}}},
			wantIDs: []string{"1", "2"},
		},
		{
			name: "date range",
			query: Query{Filters: []Filter{
				{Column: "date", Op: OpGte, Value: "2024-06-02"},
				{Column: "date", Op: OpLte, Value: "2024-06-10"},
			}},
			wantIDs: []string{"2", "3"},
		},
		{
			name:    "numeric gte",
			query:   Query{Filters: []Filter{{Column: "amount", Op: OpGte, Value: "40"}}},
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "order by date descending",
			query:   Query{Filters: []Filter{{Column: "user_id", Op: OpEq, Value: "u1"}}, OrderBy: "date", Descending: true},
			wantIDs: []string{"2", "1"},
		},
		{
			name:    "limit",
			query:   Query{OrderBy: "date", Limit: 1},
			wantIDs: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, "transactions", tt.query)
			if err != nil {
				t.Fatalf("Query() error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID() != id {
					t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID(), id)
				}
			}
		})
	}
}

func TestMemoryStore_UpdateDelete(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	if err := s.Update(ctx, "transactions", "2", Record{"amount": "45"}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, err := s.Query(ctx, "transactions", Query{Filters: []Filter{{Column: "id", Op: OpEq, Value: "2"}}})
	if err != nil || len(got) != 1 || got[0]["amount"] != "45" {
		t.Fatalf("after update: %+v, err %v", got, err)
	}

	if err := s.Delete(ctx, "transactions", "2"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, "transactions", "2"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() = %v, want %v", err, ErrRecordNotFound)
	}
	if err := s.Update(ctx, "transactions", "missing", Record{"x": "y"}); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Update(missing) = %v, want %v", err, ErrRecordNotFound)
	}
}

func TestMemoryStore_QueryReturnsCopies(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	got, err := s.Query(ctx, "transactions", Query{Filters: []Filter{{Column: "id", Op: OpEq, Value: "1"}}})
	if err != nil || len(got) != 1 {
		t.Fatalf("Query() = %+v, err %v", got, err)
	}
	got[0]["amount"] = "tampered"

	again, _ := s.Query(ctx, "transactions", Query{Filters: []Filter{{Column: "id", Op: OpEq, Value: "1"}}})
	if again[0]["amount"] != "100" {
		t.Errorf("store mutated through query result: %+v", again[0])
	}
}
