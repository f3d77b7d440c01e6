package domain

import "github.com/shopspring/decimal"

// Budget is a monthly spending ceiling for one expense category.
// At most one budget per (user, category) pair is an application-level
// invariant; the evaluator tolerates duplicates (last record wins).
type Budget struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetInput is one entry of a batched budget save: the category name and
// the new monthly ceiling.
type BudgetInput struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetProgress is the evaluated state of one budget for the current month.
// Percentage carries the true unclamped value and drives the OverBudget
// flag; ClampedPercentage is bounded to 100 for progress-bar rendering.
type BudgetProgress struct {
	Category          string          `json:"category"`
	Spent             decimal.Decimal `json:"spent"`
	Budget            decimal.Decimal `json:"budget"`
	Percentage        float64         `json:"percentage"`
	ClampedPercentage float64         `json:"clampedPercentage"`
	OverBudget        bool            `json:"overBudget"`
}
