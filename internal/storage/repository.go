package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pocketwise/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Profile is the persisted onboarding outcome plus the monthly budget.
type Profile struct {
	UserID         string     `json:"user_id"`
	Age            int        `json:"age"`
	Goals          []string   `json:"goals"`
	KnowledgeScore int        `json:"knowledge_score"`
	Level          core.Level `json:"level"`
	MonthlyBudget  float64    `json:"monthly_budget"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction persists a single transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, description, amount, category, type, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Description, tx.Amount, tx.Category, string(tx.Type), tx.Date,
		tx.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"description", tx.Description,
		"amount", tx.Amount,
		"type", tx.Type,
		"date", tx.Date)

	return nil
}

// CreateTransactions persists a batch atomically. Either every row lands
// or none do.
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, userID string, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions (id, user_id, description, amount, category, type, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			tx.ID, userID, tx.Description, tx.Amount, tx.Category, string(tx.Type), tx.Date,
			tx.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetTransaction returns a transaction by id, including soft-deleted rows
// so the sync worker can resolve tombstones.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, category, type, date, created_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

// FindTransaction looks a transaction up by id alone. Used by the sync
// worker, which learns ids from queue messages rather than requests.
func (r *SQLiteRepository) FindTransaction(ctx context.Context, id string) (string, core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, id, description, amount, category, type, date, created_at
		 FROM transactions WHERE id = ?`, id)

	var (
		userID    string
		tx        core.Transaction
		txType    string
		createdAt string
	)
	err := row.Scan(&userID, &tx.ID, &tx.Description, &tx.Amount, &tx.Category, &txType, &tx.Date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return "", core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(txType)
	tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return userID, tx, nil
}

// ListTransactions returns the user's live transactions, newest date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, category, type, date, created_at
		 FROM transactions
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// DeleteTransaction soft-deletes a transaction, leaving a tombstone for
// the sync worker.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		txType    string
		createdAt string
	)
	err := row.Scan(&tx.ID, &tx.Description, &tx.Amount, &tx.Category, &txType, &tx.Date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(txType)
	tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return tx, nil
}

// CreateGoal persists a savings goal.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, userID string, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, title, target_amount, current_amount, category, deadline, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, userID, g.Title, g.TargetAmount, g.CurrentAmount, g.Category, g.Deadline, boolToInt(g.Completed),
		g.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// GetGoal returns a goal by id.
func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, target_amount, current_amount, category, deadline, completed, created_at
		 FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

// ListGoals returns all of the user's goals, oldest first.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, target_amount, current_amount, category, deadline, completed, created_at
		 FROM savings_goals WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGoal replaces the mutable fields of a goal.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, userID string, g core.SavingsGoal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET title = ?, target_amount = ?, current_amount = ?, category = ?, deadline = ?, completed = ?
		 WHERE id = ? AND user_id = ?`,
		g.Title, g.TargetAmount, g.CurrentAmount, g.Category, g.Deadline, boolToInt(g.Completed), g.ID, userID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGoal removes a goal.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g         core.SavingsGoal
		completed int
		createdAt string
	)
	err := row.Scan(&g.ID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Category, &g.Deadline, &completed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.Completed = completed != 0
	g.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return g, nil
}

// CreateActivity appends one learning activity log entry.
func (r *SQLiteRepository) CreateActivity(ctx context.Context, userID string, a core.LearningActivity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO learning_activities (id, user_id, date, type, description, points)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, userID, a.Date.UTC().Format(time.RFC3339Nano), string(a.Type), a.Description, a.Points)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivities returns the user's full activity log, oldest first.
func (r *SQLiteRepository) ListActivities(ctx context.Context, userID string) ([]core.LearningActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, type, description, points
		 FROM learning_activities WHERE user_id = ? ORDER BY date`, userID)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out []core.LearningActivity
	for rows.Next() {
		var (
			a     core.LearningActivity
			date  string
			aType string
		)
		if err := rows.Scan(&a.ID, &date, &aType, &a.Description, &a.Points); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Date, _ = time.Parse(time.RFC3339Nano, date)
		a.Type = core.ActivityType(aType)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertProfile creates or replaces the user's profile.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p Profile) error {
	goals, err := json.Marshal(p.Goals)
	if err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	createdAt := now
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, age, goals, knowledge_score, level, monthly_budget, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   age = excluded.age,
		   goals = excluded.goals,
		   knowledge_score = excluded.knowledge_score,
		   level = excluded.level,
		   monthly_budget = excluded.monthly_budget,
		   updated_at = excluded.updated_at`,
		p.UserID, p.Age, string(goals), p.KnowledgeScore, string(p.Level), p.MonthlyBudget, createdAt, now)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the user's profile.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, age, goals, knowledge_score, level, monthly_budget, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID)

	var (
		p         Profile
		goals     string
		level     string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&p.UserID, &p.Age, &goals, &p.KnowledgeScore, &level, &p.MonthlyBudget, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if err := json.Unmarshal([]byte(goals), &p.Goals); err != nil {
		return Profile{}, fmt.Errorf("unmarshal goals: %w", err)
	}
	p.Level = core.Level(level)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return p, nil
}

// SetMonthlyBudget updates just the budget field of an existing profile.
func (r *SQLiteRepository) SetMonthlyBudget(ctx context.Context, userID string, amount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET monthly_budget = ?, updated_at = ? WHERE user_id = ?`,
		amount, time.Now().UTC().Format(time.RFC3339Nano), userID)
	if err != nil {
		return fmt.Errorf("set monthly budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
