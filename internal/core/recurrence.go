// Recurrence expansion for repeating transactions.
//
// Each frequency has its own DateStepper that computes the n-th occurrence
// from the anchor date, so a clamped month end (Jan 31 -> Feb 28) never
// degrades later occurrences.
package core

import (
	"fmt"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type Frequency string

// DateStepper computes the n-th occurrence of a recurring schedule from
// its anchor date. Occurrence 0 is the anchor itself.
type DateStepper interface {
	Step(anchor time.Time, n int) time.Time
}

// DailyStepper advances one day per occurrence.
type DailyStepper struct{}

func (DailyStepper) Step(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, n)
}

// WeeklyStepper advances seven days per occurrence.
type WeeklyStepper struct{}

func (WeeklyStepper) Step(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// MonthlyStepper advances one calendar month per occurrence, preserving the
// anchor's day of month. When the target month is shorter, the day clamps
// to the month's last valid day: Jan 31 -> Feb 28 (Feb 29 in leap years),
// then Mar 31 again.
type MonthlyStepper struct{}

func (MonthlyStepper) Step(anchor time.Time, n int) time.Time {
	months := int(anchor.Month()) - 1 + n
	year := anchor.Year() + months/12
	month := time.Month(months%12 + 1)
	return time.Date(year, month, clampDay(year, month, anchor.Day()), 0, 0, 0, 0, anchor.Location())
}

// YearlyStepper advances one calendar year per occurrence; Feb 29 anchors
// clamp to Feb 28 in non-leap years.
type YearlyStepper struct{}

func (YearlyStepper) Step(anchor time.Time, n int) time.Time {
	year := anchor.Year() + n
	return time.Date(year, anchor.Month(), clampDay(year, anchor.Month(), anchor.Day()), 0, 0, 0, 0, anchor.Location())
}

// clampDay limits day to the last valid day of the given month.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

var dateSteppers = map[Frequency]DateStepper{
	Daily:   DailyStepper{},
	Weekly:  WeeklyStepper{},
	Monthly: MonthlyStepper{},
	Yearly:  YearlyStepper{},
}

// GetDateStepper returns the stepper for a frequency, or an error for an
// unknown one.
func GetDateStepper(freq Frequency) (DateStepper, error) {
	stepper, ok := dateSteppers[freq]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", freq)
	}
	return stepper, nil
}

// ExpandRecurring generates the dated instances of a recurring transaction.
// The start date is the template's date, or the current day when the
// template has none. The end boundary is endDate when given, otherwise
// exactly one year after the start; occurrences run from the start up to
// and including the boundary. The result is empty when the start already
// exceeds the boundary.
func ExpandRecurring(template CreateTransaction, freq Frequency, endDate string, now time.Time) ([]CreateTransaction, error) {
	stepper, err := GetDateStepper(freq)
	if err != nil {
		return nil, err
	}

	startStr := template.Date
	if startStr == "" {
		startStr = now.Format(DateLayout)
	}
	start, err := time.ParseInLocation(DateLayout, startStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startStr, err)
	}

	end := start.AddDate(1, 0, 0)
	if endDate != "" {
		end, err = time.ParseInLocation(DateLayout, endDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse end date %q: %w", endDate, err)
		}
	}

	var out []CreateTransaction
	for n := 0; ; n++ {
		d := stepper.Step(start, n)
		if d.After(end) {
			break
		}
		instance := template
		instance.Date = d.Format(DateLayout)
		out = append(out, instance)
	}
	return out, nil
}
