// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/catatuang/catatuang-go/internal/domain"
)

// TransactionStore defines all data operations for transaction records.
// Implemented by the Firestore adapter (or any other persistence layer).
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID string) error
}

// SettingsStore defines data operations for user categories and budgets.
type SettingsStore interface {
	// Categories
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, catID string) error

	// Budgets
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	UpsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

// AuthProvider handles credential lifecycle against the external
// identity service. Password material never touches this process
// beyond forwarding it on these calls.
type AuthProvider interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthSession, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthSession, error)
	Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.AuthSession, error)
	Lookup(ctx context.Context, idToken string) (*domain.AccountInfo, error)
	SendPasswordReset(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, idToken, newPassword string) error
	ChangeEmail(ctx context.Context, idToken, newEmail string) error
	DeleteAccount(ctx context.Context, idToken string) error
}

// TokenVerifier validates an ID token and extracts the subject.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (userID string, err error)
}

// Watcher streams change notifications for a user's documents.
// Each received value signals that the watched collection changed
// and a fresh read is required.
type Watcher interface {
	Watch(ctx context.Context, userID string) (<-chan domain.ChangeEvent, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
