package core

import (
	"sort"
	"time"
)

const (
	ActivityQuiz             ActivityType = "quiz"
	ActivityLesson           ActivityType = "lesson"
	ActivityGoalCreated      ActivityType = "goal_created"
	ActivityGoalDeposit      ActivityType = "goal_deposit"
	ActivityGoalCompleted    ActivityType = "goal_completed"
	ActivityTransactionAdded ActivityType = "transaction_added"
	ActivityBudgetSet        ActivityType = "budget_set"
)

// StreakWindowDays bounds how far back the streak walk looks. A fixed
// policy limit, not a precision loss.
const StreakWindowDays = 30

type (
	ActivityType string

	// LearningActivity is one append-only engagement log entry. Entries
	// are never mutated or deleted by normal flow.
	LearningActivity struct {
		ID          string       `json:"id"`
		Date        time.Time    `json:"date"`
		Type        ActivityType `json:"type"`
		Description string       `json:"description"`
		Points      int          `json:"points"`
	}
)

// Streak counts the consecutive calendar days ending at asOf that have at
// least one logged activity. A streak requires activity today or
// yesterday; otherwise it is 0. The walk stops at the first empty day or
// after StreakWindowDays days.
func Streak(activities []LearningActivity, asOf time.Time) int {
	if len(activities) == 0 {
		return 0
	}

	days := make(map[string]bool, len(activities))
	for _, a := range activities {
		days[a.Date.In(asOf.Location()).Format(DateLayout)] = true
	}

	today := asOf.Format(DateLayout)
	yesterday := asOf.AddDate(0, 0, -1).Format(DateLayout)
	if !days[today] && !days[yesterday] {
		return 0
	}

	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		day := asOf.AddDate(0, 0, -i).Format(DateLayout)
		if !days[day] {
			break
		}
		streak++
	}
	return streak
}

// TotalPoints sums the points of every logged activity.
func TotalPoints(activities []LearningActivity) int {
	total := 0
	for _, a := range activities {
		total += a.Points
	}
	return total
}

// RecentActivities returns the latest n activities, newest first.
func RecentActivities(activities []LearningActivity, n int) []LearningActivity {
	out := append([]LearningActivity(nil), activities...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
