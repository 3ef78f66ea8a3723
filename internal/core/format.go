package core

import (
	"strings"
	"time"
)

// Normalize returns the canonical storage form of a transaction that has
// already passed Validate: description and category trimmed, amount rounded
// to the cent, date defaulted to the current day when absent. It does not
// re-validate. Normalize is idempotent.
func (t CreateTransaction) Normalize(now time.Time) CreateTransaction {
	out := t
	out.Description = strings.TrimSpace(t.Description)
	out.Amount = RoundCents(t.Amount)
	out.Category = strings.TrimSpace(t.Category)
	if out.Date == "" {
		out.Date = now.Format(DateLayout)
	}
	return out
}
