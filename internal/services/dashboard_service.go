package services

import (
	"context"
	"fmt"
	"time"

	"pocketwise/internal/cache"
	"pocketwise/internal/core"
	"pocketwise/internal/storage"
)

// Overview is the aggregated dashboard payload for one user.
type Overview struct {
	Month            string                  `json:"month"`
	Income           float64                 `json:"income"`
	Expenses         float64                 `json:"expenses"`
	Net              float64                 `json:"net"`
	SavingsRate      float64                 `json:"savings_rate"`
	MonthlyBudget    float64                 `json:"monthly_budget"`
	BudgetRemaining  float64                 `json:"budget_remaining"`
	Streak           int                     `json:"streak"`
	TotalPoints      int                     `json:"total_points"`
	RecentActivities []core.LearningActivity `json:"recent_activities"`
	AvgGoalProgress  float64                 `json:"avg_goal_progress"`
	CompletedGoals   int                     `json:"completed_goals"`
	UpcomingGoals    []core.UpcomingGoal     `json:"upcoming_goals"`
}

// DashboardService assembles the overview, memoized per user behind a
// short-TTL LRU cache.
type DashboardService struct {
	storage *storage.SQLiteRepository
	cache   cache.Cache[Overview]
	nowFn   func() time.Time
}

func NewDashboardService(storage *storage.SQLiteRepository, ttl time.Duration) *DashboardService {
	return &DashboardService{
		storage: storage,
		cache:   cache.NewLRUCache[Overview](256, ttl),
		nowFn:   time.Now,
	}
}

// CacheCleaner exposes the underlying cache for manager registration.
func (s *DashboardService) CacheCleaner() cache.Cleaner {
	if c, ok := s.cache.(cache.Cleaner); ok {
		return c
	}
	return nil
}

// Invalidate drops the cached overview after a write.
func (s *DashboardService) Invalidate(userID string) {
	s.cache.Delete(overviewKey(userID))
}

// Overview returns the user's dashboard, computing it on a cache miss.
func (s *DashboardService) Overview(ctx context.Context, userID string) (Overview, error) {
	key := overviewKey(userID)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	overview, err := s.build(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	s.cache.Set(key, overview)
	return overview, nil
}

func (s *DashboardService) build(ctx context.Context, userID string) (Overview, error) {
	now := s.nowFn()

	txs, err := s.storage.ListTransactions(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list transactions: %w", err)
	}
	goals, err := s.storage.ListGoals(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list goals: %w", err)
	}
	activities, err := s.storage.ListActivities(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list activities: %w", err)
	}

	monthTxs := core.FilterMonth(txs, now.Year(), int(now.Month()))
	summary := core.Summarize(monthTxs, "", "")

	overview := Overview{
		Month:            core.MonthKey(now.Year(), int(now.Month())),
		Income:           summary.TotalIncome,
		Expenses:         summary.TotalExpenses,
		Net:              summary.NetAmount,
		SavingsRate:      savingsRate(summary),
		Streak:           core.Streak(activities, now),
		TotalPoints:      core.TotalPoints(activities),
		RecentActivities: core.RecentActivities(activities, 5),
		UpcomingGoals:    core.UpcomingDeadlines(goals, now),
	}

	var progressSum float64
	var activeGoals int
	for _, g := range goals {
		if g.Completed {
			overview.CompletedGoals++
			continue
		}
		progressSum += g.Progress()
		activeGoals++
	}
	if activeGoals > 0 {
		overview.AvgGoalProgress = core.RoundCents(progressSum / float64(activeGoals))
	}

	profile, err := s.storage.GetProfile(ctx, userID)
	if err == nil {
		overview.MonthlyBudget = profile.MonthlyBudget
		if profile.MonthlyBudget > 0 {
			overview.BudgetRemaining = core.RoundCents(profile.MonthlyBudget - summary.TotalExpenses)
		}
	}

	return overview, nil
}

func savingsRate(summary core.Summary) float64 {
	if summary.TotalIncome == 0 {
		return 0
	}
	return core.RoundCents((summary.TotalIncome - summary.TotalExpenses) / summary.TotalIncome * 100)
}

func overviewKey(userID string) string {
	return "overview:" + userID
}
