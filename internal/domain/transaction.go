// Package domain holds the entities and typed errors shared across
// services, handlers and stores.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. The sign of a transaction's contribution to the
// balance is determined solely by its type; Amount is always positive.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// FallbackCategory labels transactions whose category field is empty.
// "Lainnya" = "Other"; the UI renders it as its own chart slice.
const FallbackCategory = "Lainnya"

// Transaction is a single income or expense record owned by one user.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TransactionInput is the mutable subset of a transaction: what a create
// sets and what an update replaces. ID, owner and creation time are never
// client-controlled.
type TransactionInput struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
}

// Validate checks a transaction input before it is written.
func (in *TransactionInput) Validate() error {
	if in.Title == "" {
		return &ErrValidation{Field: "title", Message: "required"}
	}
	if !in.Amount.IsPositive() {
		return &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if in.Type != TypeIncome && in.Type != TypeExpense {
		return &ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if in.Category == "" {
		return &ErrValidation{Field: "category", Message: "required"}
	}
	return nil
}

// PeriodSummary aggregates the transactions selected by the active filter.
type PeriodSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}
