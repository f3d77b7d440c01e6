package domain

import "github.com/shopspring/decimal"

// CategoryTotal is one slice of the category breakdown chart.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// TrendPoint is one day of the income/expense trend series. Date is the
// local calendar day in YYYY-MM-DD form.
type TrendPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DerivedState is everything the dashboard renders, recomputed in full
// from the latest collection snapshots. It is never persisted.
type DerivedState struct {
	Balance        decimal.Decimal            `json:"balance"`
	CategoryTotals []CategoryTotal            `json:"categoryTotals"`
	Turnover       decimal.Decimal            `json:"turnover"`
	MonthlySpend   map[string]decimal.Decimal `json:"monthlySpend"`
	Trend          []TrendPoint               `json:"trend"`
	BudgetProgress []BudgetProgress           `json:"budgetProgress"`
}

// ChangeEvent identifies which collection changed for a user. The
// receiver re-reads the whole collection rather than applying a delta.
type ChangeEvent struct {
	UserID     string
	Collection string
}

// Collections that emit change events.
const (
	CollectionTransactions = "transactions"
	CollectionCategories   = "categories"
	CollectionBudgets      = "budgets"
)

// Snapshot is a full point-in-time copy of one user's collections, as
// pushed by the document store on any change. Streams update
// independently: a snapshot may refresh only one of the slices.
type Snapshot struct {
	Transactions []Transaction
	Categories   []Category
	Budgets      []Budget
}
