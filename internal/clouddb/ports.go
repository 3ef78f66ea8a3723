// Package clouddb defines the port to the hosted record store that mirrors
// each user's budget data across devices. The store's own transaction and
// consistency guarantees are its business; this package only expresses the
// insert/query/update/delete capability the sync pathway needs.
package clouddb

import "context"

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

type (
	// Op is a filter comparison operator.
	Op string

	// Filter constrains one column. Values compare numerically when both
	// sides parse as numbers, lexicographically otherwise (which is what
	// YYYY-MM-DD dates want).
	Filter struct {
		Column string
		Op     Op
		Value  string
	}

	// Query selects records from one table.
	Query struct {
		Filters    []Filter
		OrderBy    string
		Descending bool
		Limit      int // 0 = no limit
	}

	// Record is one row, keyed by column name. Every record carries an
	// "id" column.
	Record map[string]string

	// RecordStore is the hosted database capability.
	RecordStore interface {
		Insert(ctx context.Context, table string, rec Record) error
		Query(ctx context.Context, table string, q Query) ([]Record, error)
		Update(ctx context.Context, table string, id string, fields Record) error
		Delete(ctx context.Context, table string, id string) error
	}
)

// ID returns the record's id column.
func (r Record) ID() string {
	return r["id"]
}
