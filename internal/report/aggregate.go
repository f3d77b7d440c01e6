package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/catatuang/catatuang-go/internal/domain"
)

// ComputeBalance folds the transaction set into a single balance: income
// adds, expense subtracts. Empty input yields zero.
func ComputeBalance(txns []domain.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txns {
		if tx.Type == domain.TypeIncome {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}

// ComputeCategoryTotals groups transactions by category name, summing
// amounts regardless of type — the breakdown chart shows turnover per
// category, not net flow. Matching is exact and case-sensitive; an empty
// category falls back to domain.FallbackCategory. The returned slice is
// ordered by descending value, ties broken by name, so output is stable
// across recomputes. The second result is the grand total (turnover).
func ComputeCategoryTotals(txns []domain.Transaction) ([]domain.CategoryTotal, decimal.Decimal) {
	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range txns {
		category := tx.Category
		if category == "" {
			category = domain.FallbackCategory
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)
	}

	totals := make([]domain.CategoryTotal, 0, len(byCategory))
	turnover := decimal.Zero
	for name, value := range byCategory {
		totals = append(totals, domain.CategoryTotal{Name: name, Value: value})
		turnover = turnover.Add(value)
	}

	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Value.Equal(totals[j].Value) {
			return totals[i].Value.GreaterThan(totals[j].Value)
		}
		return totals[i].Name < totals[j].Name
	})

	return totals, turnover
}

// ComputeMonthlySpend sums expense transactions per category for the
// calendar month containing ref, from the first of the month through ref
// itself. It deliberately ignores any user-selected filter: budget
// progress is always anchored to "this month".
func ComputeMonthlySpend(txns []domain.Transaction, ref time.Time) map[string]decimal.Decimal {
	y, m, _ := ref.Date()
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())

	spend := make(map[string]decimal.Decimal)
	for _, tx := range txns {
		if tx.Type != domain.TypeExpense {
			continue
		}
		if tx.CreatedAt.Before(monthStart) || tx.CreatedAt.After(ref) {
			continue
		}
		category := tx.Category
		if category == "" {
			category = domain.FallbackCategory
		}
		spend[category] = spend[category].Add(tx.Amount)
	}
	return spend
}

// ComputeTrend buckets transactions by local calendar day and accumulates
// separate income and expense sums per day. The series is ordered
// ascending by date with no duplicate dates; days without transactions do
// not appear (the chart draws straight lines across gaps).
func ComputeTrend(txns []domain.Transaction) []domain.TrendPoint {
	type daySums struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}

	byDay := make(map[string]daySums)
	for _, tx := range txns {
		key := DayKey(tx.CreatedAt)
		sums := byDay[key]
		if tx.Type == domain.TypeIncome {
			sums.income = sums.income.Add(tx.Amount)
		} else {
			sums.expense = sums.expense.Add(tx.Amount)
		}
		byDay[key] = sums
	}

	keys := make([]string, 0, len(byDay))
	for key := range byDay {
		keys = append(keys, key)
	}
	sort.Strings(keys) // YYYY-MM-DD sorts chronologically

	trend := make([]domain.TrendPoint, 0, len(keys))
	for _, key := range keys {
		sums := byDay[key]
		trend = append(trend, domain.TrendPoint{
			Date:    key,
			Income:  sums.income,
			Expense: sums.expense,
		})
	}
	return trend
}

// Summarize totals the filtered set into the period summary box: income,
// expense, net and count.
func Summarize(txns []domain.Transaction) domain.PeriodSummary {
	summary := domain.PeriodSummary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, tx := range txns {
		if tx.Type == domain.TypeIncome {
			summary.Income = summary.Income.Add(tx.Amount)
		} else {
			summary.Expense = summary.Expense.Add(tx.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expense)
	summary.Count = len(txns)
	return summary
}

// DayKey returns the local calendar-day bucket key for a timestamp.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
