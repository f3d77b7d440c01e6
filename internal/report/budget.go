package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/catatuang/catatuang-go/internal/domain"
)

// EvaluateBudgets combines the configured budgets with the current month's
// spend-by-category map. For each budget: percentage = spent/budget*100,
// with a zero or negative budget amount defined as 0% (never Inf or NaN);
// OverBudget reflects the true unclamped percentage, while
// ClampedPercentage is capped at 100 for rendering.
//
// Duplicate budgets for the same category should not exist, but the store
// cannot enforce that; when they do, the last record wins and the row
// keeps the position of the first occurrence, so output stays
// deterministic for any input order.
func EvaluateBudgets(budgets []domain.Budget, spend map[string]decimal.Decimal) []domain.BudgetProgress {
	rows := make([]domain.BudgetProgress, 0, len(budgets))
	index := make(map[string]int, len(budgets))

	for _, b := range budgets {
		spent := spend[b.Category] // zero value when the category has no spend
		row := evaluateOne(b, spent)

		if i, ok := index[b.Category]; ok {
			rows[i] = row
			continue
		}
		index[b.Category] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

func evaluateOne(b domain.Budget, spent decimal.Decimal) domain.BudgetProgress {
	row := domain.BudgetProgress{
		Category: b.Category,
		Spent:    spent,
		Budget:   b.Amount,
	}
	if b.Amount.IsPositive() {
		row.Percentage = spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	row.OverBudget = row.Percentage > 100
	row.ClampedPercentage = row.Percentage
	if row.ClampedPercentage > 100 {
		row.ClampedPercentage = 100
	}
	return row
}

// Derive recomputes the full dashboard state from a snapshot. It is the
// single entry point the live-subscription layer calls on every change:
// cheap, idempotent, and a pure function of the snapshot and now.
func Derive(snap domain.Snapshot, now time.Time) domain.DerivedState {
	totals, turnover := ComputeCategoryTotals(snap.Transactions)
	spend := ComputeMonthlySpend(snap.Transactions, now)

	return domain.DerivedState{
		Balance:        ComputeBalance(snap.Transactions),
		CategoryTotals: totals,
		Turnover:       turnover,
		MonthlySpend:   spend,
		Trend:          ComputeTrend(snap.Transactions),
		BudgetProgress: EvaluateBudgets(snap.Budgets, spend),
	}
}
