package core

import (
	"fmt"
	"sort"
)

type (
	// Summary holds aggregate statistics over a set of transactions.
	// CategoryBreakdown is keyed by "{category}_{type}" so the same
	// category name can appear once per transaction type.
	Summary struct {
		TotalIncome       float64            `json:"total_income"`
		TotalExpenses     float64            `json:"total_expenses"`
		NetAmount         float64            `json:"net_amount"`
		TransactionCount  int                `json:"transaction_count"`
		CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	}

	// CategoryShare is one category's slice of a transaction type's total.
	CategoryShare struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Percent  float64 `json:"percent"`
	}
)

// Summarize computes totals over transactions whose date falls within
// [start, end] inclusive. Either bound may be empty to leave that side
// open. Bounds are YYYY-MM-DD strings, so the comparison is lexicographic.
func Summarize(txs []Transaction, start, end string) Summary {
	s := Summary{CategoryBreakdown: make(map[string]float64)}
	for _, t := range txs {
		if start != "" && t.Date < start {
			continue
		}
		if end != "" && t.Date > end {
			continue
		}
		s.TransactionCount++
		switch t.Type {
		case Income:
			s.TotalIncome += t.Amount
		case Expense:
			s.TotalExpenses += t.Amount
		}
		key := fmt.Sprintf("%s_%s", t.Category, t.Type)
		s.CategoryBreakdown[key] += t.Amount
	}
	s.TotalIncome = RoundCents(s.TotalIncome)
	s.TotalExpenses = RoundCents(s.TotalExpenses)
	s.NetAmount = RoundCents(s.TotalIncome - s.TotalExpenses)
	for k, v := range s.CategoryBreakdown {
		s.CategoryBreakdown[k] = RoundCents(v)
	}
	return s
}

// MonthKey renders a year+month pair as the YYYY-MM prefix shared by every
// date in that calendar month.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FilterMonth returns the transactions dated within the given calendar
// month, preserving input order.
func FilterMonth(txs []Transaction, year, month int) []Transaction {
	prefix := MonthKey(year, month) + "-"
	var out []Transaction
	for _, t := range txs {
		if len(t.Date) >= len(prefix) && t.Date[:len(prefix)] == prefix {
			out = append(out, t)
		}
	}
	return out
}

// CategoryPercentages breaks a transaction type's total down by category.
// Each share's percent is its amount over the type total times 100 (zero
// when the total is zero). Results are sorted by amount descending; ties
// break on category name so the order is stable.
func CategoryPercentages(txs []Transaction, typ TransactionType) []CategoryShare {
	byCategory := make(map[string]float64)
	var total float64
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		byCategory[t.Category] += t.Amount
		total += t.Amount
	}

	shares := make([]CategoryShare, 0, len(byCategory))
	for cat, amount := range byCategory {
		share := CategoryShare{Category: cat, Amount: RoundCents(amount)}
		if total > 0 {
			share.Percent = RoundCents(amount / total * 100)
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}
