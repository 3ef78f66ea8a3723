// Package csvio converts transactions to and from the app's CSV exchange
// format: a header row followed by one double-quote-wrapped, comma-joined
// row per transaction. The format is deliberately simple; embedded quotes
// and commas inside fields are not escaped.
package csvio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pocketwise/internal/core"
)

// Columns is the export header, in order.
var Columns = []string{"Date", "Description", "Category", "Type", "Amount"}

// SkippedRow reports one import row that failed validation and was dropped.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Encode serializes transactions to CSV text: a header row, then one row
// per record with every field quote-wrapped.
func Encode(txs []core.Transaction) string {
	var b strings.Builder
	writeRow(&b, Columns)
	for _, t := range txs {
		writeRow(&b, []string{
			t.Date,
			t.Description,
			t.Category,
			string(t.Type),
			core.FormatAmount(t.Amount),
		})
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f)
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// Decode parses CSV text back into transaction-creation records. The first
// line is the header; columns are matched by case-insensitive name. Rows
// that fail validation are dropped and reported, not fatal: decoding
// continues and the returned slice preserves input row order. now feeds the
// validator's future-date rule.
func Decode(text string, now time.Time) ([]core.CreateTransaction, []SkippedRow) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	headers := splitRow(lines[0])

	var (
		records []core.CreateTransaction
		skipped []SkippedRow
	)
	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}
		record := mapRow(headers, splitRow(line))
		if err := record.Validate(now); err != nil {
			skipped = append(skipped, SkippedRow{Line: lineNo, Reason: err.Error()})
			continue
		}
		records = append(records, record)
	}
	return records, skipped
}

func splitRow(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.ReplaceAll(p, `"`, ""))
	}
	return parts
}

func mapRow(headers, values []string) core.CreateTransaction {
	var record core.CreateTransaction
	for i, h := range headers {
		if i >= len(values) {
			break
		}
		v := values[i]
		switch strings.ToLower(h) {
		case "date":
			record.Date = v
		case "description":
			record.Description = v
		case "category":
			record.Category = v
		case "type":
			record.Type = core.TransactionType(strings.ToLower(v))
		case "amount":
			amount, err := strconv.ParseFloat(v, 64)
			if err != nil {
				amount = 0
			}
			record.Amount = amount
		}
	}
	return record
}

// Filename builds the conventional export file name for a given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("transactions_%s.csv", now.Format("20060102"))
}
