package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var dateFormatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks a proposed transaction against the field-level business
// rules, in order, returning the first failure. A nil result means the
// record may be normalized and persisted. The current time is passed in so
// the future-date rule stays deterministic under test.
func (t CreateTransaction) Validate(now time.Time) error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if utf8.RuneCountInString(t.Description) > 255 {
		return ErrDescriptionTooLong
	}
	// Strict textual precision check, not a rounding step.
	if DecimalDigits(t.Amount) > 2 {
		return ErrAmountPrecision
	}
	if t.Date != "" {
		if !dateFormatRe.MatchString(t.Date) {
			return ErrInvalidDateFormat
		}
		d, err := time.ParseInLocation(DateLayout, t.Date, time.UTC)
		if err != nil {
			return ErrInvalidDate
		}
		if d.After(now) {
			return ErrFutureDate
		}
	}
	return nil
}
