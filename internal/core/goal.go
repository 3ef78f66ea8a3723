package core

import (
	"errors"
	"sort"
	"time"
)

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueSoon  Urgency = "due_soon"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyDistant  Urgency = "distant"
)

// upcomingWindowDays bounds how far out a deadline still counts as
// "upcoming" on the dashboard.
const upcomingWindowDays = 30

type (
	Urgency string

	// SavingsGoal tracks progress toward a target amount. CurrentAmount
	// is kept within [0, TargetAmount]; deposits beyond the target are
	// capped, not rejected. Deadline is optional (empty = none).
	SavingsGoal struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		TargetAmount  float64   `json:"target_amount"`
		CurrentAmount float64   `json:"current_amount"`
		Category      string    `json:"category"`
		Deadline      string    `json:"deadline,omitempty"`
		Completed     bool      `json:"completed"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// UpcomingGoal pairs a goal with how many days remain until its
	// deadline, for dashboard display.
	UpcomingGoal struct {
		SavingsGoal
		DaysLeft int `json:"days_left"`
	}
)

var (
	ErrEmptyGoalTitle    = errors.New("goal title is required")
	ErrInvalidGoalTarget = errors.New("goal target amount must be greater than 0")
)

// Validate checks the fields a goal needs before it can be tracked.
func (g SavingsGoal) Validate() error {
	if g.Title == "" {
		return ErrEmptyGoalTitle
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidGoalTarget
	}
	return nil
}

// Progress returns percentage completion, capped at 100. Callers maintain
// the TargetAmount > 0 contract via Validate.
func (g SavingsGoal) Progress() float64 {
	pct := g.CurrentAmount / g.TargetAmount * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Remaining returns the amount still needed to reach the target, never
// negative.
func (g SavingsGoal) Remaining() float64 {
	r := RoundCents(g.TargetAmount - g.CurrentAmount)
	if r < 0 {
		return 0
	}
	return r
}

// AddToGoal deposits amount into the goal, capping at the target. Reaching
// the target marks the goal completed.
func AddToGoal(g SavingsGoal, amount float64) SavingsGoal {
	g.CurrentAmount = RoundCents(g.CurrentAmount + amount)
	if g.CurrentAmount >= g.TargetAmount {
		g.CurrentAmount = g.TargetAmount
		g.Completed = true
	}
	return g
}

// ClampCurrent forces CurrentAmount back into [0, TargetAmount] after a
// direct field edit.
func (g SavingsGoal) ClampCurrent() SavingsGoal {
	if g.CurrentAmount < 0 {
		g.CurrentAmount = 0
	}
	if g.CurrentAmount > g.TargetAmount {
		g.CurrentAmount = g.TargetAmount
	}
	return g
}

// DaysLeft returns the number of days until deadline, rounding partial
// days up. Negative means overdue.
func DaysLeft(deadline string, now time.Time) (int, error) {
	d, err := time.ParseInLocation(DateLayout, deadline, time.UTC)
	if err != nil {
		return 0, ErrInvalidDate
	}
	diff := d.Sub(now).Hours() / 24
	days := int(diff)
	if diff > float64(days) {
		days++
	}
	return days, nil
}

// UrgencyBand maps a days-left count into a display band.
func UrgencyBand(daysLeft int) Urgency {
	switch {
	case daysLeft < 0:
		return UrgencyOverdue
	case daysLeft <= 7:
		return UrgencyDueSoon
	case daysLeft <= upcomingWindowDays:
		return UrgencyUpcoming
	default:
		return UrgencyDistant
	}
}

// UpcomingDeadlines surfaces the active goals whose deadlines fall within
// the next 30 days, sorted by days left ascending and capped to the top 3.
func UpcomingDeadlines(goals []SavingsGoal, now time.Time) []UpcomingGoal {
	var out []UpcomingGoal
	for _, g := range goals {
		if g.Completed || g.Deadline == "" {
			continue
		}
		days, err := DaysLeft(g.Deadline, now)
		if err != nil {
			continue
		}
		if days < 0 || days > upcomingWindowDays {
			continue
		}
		out = append(out, UpcomingGoal{SavingsGoal: g, DaysLeft: days})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
