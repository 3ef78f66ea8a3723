// Package snapshot persists the whole budget state as a single JSON blob,
// the way the client keeps one serialized document per user. Loading is
// best-effort: missing or malformed data yields the empty default state,
// never an error the caller has to handle.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pocketwise/internal/core"
)

const dataVersion = 1

// State is everything one user's budget holds.
type State struct {
	Transactions       []core.Transaction      `json:"transactions"`
	MonthlyBudget      float64                 `json:"monthly_budget"`
	SavingsGoals       []core.SavingsGoal      `json:"savings_goals"`
	LearningActivities []core.LearningActivity `json:"learning_activities"`
	LastActiveDate     string                  `json:"last_active_date,omitempty"`
}

type envelope struct {
	Version int   `json:"version"`
	State   State `json:"state"`
}

// Empty returns the default state: no transactions, goals or activities.
func Empty() State {
	return State{
		Transactions:       []core.Transaction{},
		SavingsGoals:       []core.SavingsGoal{},
		LearningActivities: []core.LearningActivity{},
	}
}

// Serialize renders a state as its stored JSON form.
func Serialize(s State) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: dataVersion, State: s})
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// Deserialize parses stored JSON back into a state. Malformed or empty
// input yields the empty default state.
func Deserialize(data []byte) State {
	if len(data) == 0 {
		return Empty()
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Empty()
	}
	s := env.State
	if s.Transactions == nil {
		s.Transactions = []core.Transaction{}
	}
	if s.SavingsGoals == nil {
		s.SavingsGoals = []core.SavingsGoal{}
	}
	if s.LearningActivities == nil {
		s.LearningActivities = []core.LearningActivity{}
	}
	return s
}

// Store reads and writes the state blob at a fixed path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates the blob's directory if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Load returns the stored state, or the empty default when the file is
// missing or unreadable.
func (s *Store) Load() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Empty()
	}
	return Deserialize(data)
}

// Save overwrites the stored state atomically via a temp-file rename.
func (s *Store) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Serialize(state)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
