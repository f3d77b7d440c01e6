package service

import (
	"context"
	"sort"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var settingsTracer = otel.Tracer("service/settings")

// SettingsService manages user categories and budgets.
type SettingsService struct {
	store   port.SettingsStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store port.SettingsStore, metrics *observability.Metrics, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, metrics: metrics, logger: logger}
}

// ============================================================
// Categories
// ============================================================

// ListCategories returns the user's categories grouped by type, names
// sorted for stable dropdown order.
func (s *SettingsService) ListCategories(ctx context.Context, userID string) (*domain.CategorySet, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.ListCategories")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	set := &domain.CategorySet{
		Expense: make([]string, 0),
		Income:  make([]string, 0),
	}
	for _, c := range cats {
		switch c.Type {
		case domain.TypeExpense:
			set.Expense = append(set.Expense, c.Name)
		case domain.TypeIncome:
			set.Income = append(set.Income, c.Name)
		}
	}
	sort.Strings(set.Expense)
	sort.Strings(set.Income)
	return set, nil
}

// CreateCategory validates the input, enforces name uniqueness per
// user+type, and writes the category.
func (s *SettingsService) CreateCategory(ctx context.Context, userID string, in *domain.CategoryInput) (*domain.Category, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.CreateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}
	for _, c := range existing {
		if c.Type == in.Type && c.Name == in.Name {
			return nil, &domain.ErrConflict{Message: "category already exists"}
		}
	}

	cat := &domain.Category{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   in.Name,
		Type:   in.Type,
	}

	created, err := s.store.CreateCategory(ctx, cat)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	s.logger.Info("category created",
		zap.String("user_id", userID),
		zap.String("category", created.Name),
		zap.String("type", created.Type),
	)
	return created, nil
}

// DeleteCategory removes a category. Transactions keep the name they were
// recorded with.
func (s *SettingsService) DeleteCategory(ctx context.Context, userID, catID string) error {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", catID))

	if err := s.store.DeleteCategory(ctx, userID, catID); err != nil {
		return err
	}

	s.logger.Info("category deleted",
		zap.String("user_id", userID),
		zap.String("category_id", catID),
	)
	return nil
}

// ============================================================
// Budgets
// ============================================================

// ListBudgets returns the user's budgets.
func (s *SettingsService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}
	return budgets, nil
}

// SaveBudgets applies a batched budget save: every input with a positive
// amount is written, updating the existing budget for its category or
// creating a new one. Inputs with amount <= 0 are skipped, and existing
// budgets absent from the batch are left alone.
func (s *SettingsService) SaveBudgets(ctx context.Context, userID string, inputs []domain.BudgetInput) ([]domain.Budget, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.SaveBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	existing, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	byCategory := make(map[string]domain.Budget, len(existing))
	for _, b := range existing {
		byCategory[b.Category] = b
	}

	saved := make([]domain.Budget, 0, len(inputs))
	for i := range inputs {
		in := inputs[i]
		if in.Category == "" {
			return saved, &domain.ErrValidation{Field: "category", Message: "required"}
		}
		if !in.Amount.IsPositive() {
			continue
		}

		budget := domain.Budget{
			UserID:   userID,
			Category: in.Category,
			Amount:   in.Amount,
		}
		if prev, ok := byCategory[in.Category]; ok {
			if prev.Amount.Equal(in.Amount) {
				saved = append(saved, prev)
				continue
			}
			budget.ID = prev.ID
		} else {
			budget.ID = uuid.NewString()
		}

		result, err := s.store.UpsertBudget(ctx, &budget)
		if err != nil {
			s.metrics.IncrExternalError("firestore")
			return saved, err
		}
		saved = append(saved, *result)
	}

	s.logger.Info("budgets saved",
		zap.String("user_id", userID),
		zap.Int("count", len(saved)),
	)
	return saved, nil
}

// DeleteBudget removes a single budget.
func (s *SettingsService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.String("budget.id", budgetID))

	return s.store.DeleteBudget(ctx, userID, budgetID)
}
