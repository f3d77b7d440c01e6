package service_test

import (
	"context"

	"github.com/catatuang/catatuang-go/internal/domain"
)

// Hand-rolled mocks for the port interfaces.

type mockTransactionStore struct {
	txns    []domain.Transaction
	err     error
	created []domain.Transaction
	updated []domain.Transaction
	deleted []string
}

func (m *mockTransactionStore) ListTransactions(_ context.Context, _ string) ([]domain.Transaction, error) {
	return m.txns, m.err
}

func (m *mockTransactionStore) GetTransaction(_ context.Context, _, txID string) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.txns {
		if m.txns[i].ID == txID {
			return &m.txns[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: txID}
}

func (m *mockTransactionStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, *tx)
	return tx, nil
}

func (m *mockTransactionStore) UpdateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = append(m.updated, *tx)
	return tx, nil
}

func (m *mockTransactionStore) DeleteTransaction(_ context.Context, _, txID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, txID)
	return nil
}

type mockSettingsStore struct {
	categories []domain.Category
	budgets    []domain.Budget
	err        error

	createdCategories []domain.Category
	deletedCategories []string
	upsertedBudgets   []domain.Budget
	deletedBudgets    []string
}

func (m *mockSettingsStore) ListCategories(_ context.Context, _ string) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockSettingsStore) CreateCategory(_ context.Context, cat *domain.Category) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdCategories = append(m.createdCategories, *cat)
	return cat, nil
}

func (m *mockSettingsStore) DeleteCategory(_ context.Context, _, catID string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedCategories = append(m.deletedCategories, catID)
	return nil
}

func (m *mockSettingsStore) ListBudgets(_ context.Context, _ string) ([]domain.Budget, error) {
	return m.budgets, m.err
}

func (m *mockSettingsStore) UpsertBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.upsertedBudgets = append(m.upsertedBudgets, *budget)
	return budget, nil
}

func (m *mockSettingsStore) DeleteBudget(_ context.Context, _, budgetID string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedBudgets = append(m.deletedBudgets, budgetID)
	return nil
}

type mockAuthProvider struct {
	session *domain.AuthSession
	account *domain.AccountInfo
	err     error

	loginCalls      []domain.LoginRequest
	passwordChanges []string
	emailChanges    []string
	resetEmails     []string
	deletedIDTokens []string
}

func (m *mockAuthProvider) Register(_ context.Context, _ *domain.RegisterRequest) (*domain.AuthSession, error) {
	return m.session, m.err
}

func (m *mockAuthProvider) Login(_ context.Context, req *domain.LoginRequest) (*domain.AuthSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.loginCalls = append(m.loginCalls, *req)
	return m.session, nil
}

func (m *mockAuthProvider) Refresh(_ context.Context, _ *domain.RefreshRequest) (*domain.AuthSession, error) {
	return m.session, m.err
}

func (m *mockAuthProvider) Lookup(_ context.Context, _ string) (*domain.AccountInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.account, nil
}

func (m *mockAuthProvider) SendPasswordReset(_ context.Context, email string) error {
	if m.err != nil {
		return m.err
	}
	m.resetEmails = append(m.resetEmails, email)
	return nil
}

func (m *mockAuthProvider) ChangePassword(_ context.Context, _, newPassword string) error {
	if m.err != nil {
		return m.err
	}
	m.passwordChanges = append(m.passwordChanges, newPassword)
	return nil
}

func (m *mockAuthProvider) ChangeEmail(_ context.Context, _, newEmail string) error {
	if m.err != nil {
		return m.err
	}
	m.emailChanges = append(m.emailChanges, newEmail)
	return nil
}

func (m *mockAuthProvider) DeleteAccount(_ context.Context, idToken string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedIDTokens = append(m.deletedIDTokens, idToken)
	return nil
}

type mockWatcher struct {
	events chan domain.ChangeEvent
	err    error
}

func (m *mockWatcher) Watch(_ context.Context, _ string) (<-chan domain.ChangeEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}
