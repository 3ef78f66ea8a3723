package core

import (
	"errors"
	"time"
)

// DateLayout is the canonical calendar-date format used throughout the
// application, in storage and on the CSV wire.
const DateLayout = "2006-01-02"

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a persisted financial event. Date is a calendar date
	// in YYYY-MM-DD form; Amount is always positive, the sign is carried
	// by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Date        string          `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// CreateTransaction is the pre-persistence shape of a transaction,
	// as it arrives from forms or CSV imports. Date may be empty, in
	// which case Normalize fills in the current day.
	CreateTransaction struct {
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Date        string          `json:"date,omitempty"`
	}
)

var (
	ErrEmptyDescription   = errors.New("description is required")
	ErrInvalidAmount      = errors.New("amount must be greater than 0")
	ErrEmptyCategory      = errors.New("category is required")
	ErrInvalidType        = errors.New("transaction type must be either \"income\" or \"expense\"")
	ErrDescriptionTooLong = errors.New("description must be less than 255 characters")
	ErrAmountPrecision    = errors.New("amount can have maximum 2 decimal places")
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDate        = errors.New("invalid date")
	ErrFutureDate         = errors.New("date cannot be in the future")
)

// Valid reports whether t names a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}
