// Package core holds the pure computation layer of the budgeting app:
// transaction validation and normalization, statistics, recurrence
// expansion, goal progress, engagement streaks and literacy-level
// classification. Nothing in this package performs I/O or reads the
// ambient clock; callers pass "now" explicitly.
package core

import (
	"math"
	"strconv"
	"strings"
)

// DecimalDigits returns the number of fractional digits in the shortest
// decimal rendering of v. It mirrors a textual precision check on user
// input: 12.5 has one digit, 12.345 has three, 12 has none.
func DecimalDigits(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// RoundCents rounds v to two decimal places using half-away-from-zero
// rounding at the cent boundary.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders an amount in its shortest decimal form, the way
// amounts appear in CSV exports (12.5, not 12.50).
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
