package firestore

import (
	"context"
	"errors"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Settings — categories and budgets, implements port.SettingsStore
// ============================================================

const (
	collCategories = "categories"
	collBudgets    = "budgets"
)

func decodeCategory(userID string, doc document) domain.Category {
	return domain.Category{
		ID:     docID(doc.Name),
		UserID: userID,
		Name:   doc.Fields["name"].asString(),
		Type:   doc.Fields["type"].asString(),
	}
}

func decodeBudget(userID string, doc document) domain.Budget {
	return domain.Budget{
		ID:       docID(doc.Name),
		UserID:   userID,
		Category: doc.Fields["category"].asString(),
		Amount:   doc.Fields["amount"].asDecimal(),
	}
}

// ListCategories fetches every category document of one user.
func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListCategories")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var cats []domain.Category

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			docs, err := c.listDocuments(ctx, userID, collCategories)
			if err != nil {
				return err
			}

			cats = make([]domain.Category, 0, len(docs))
			for _, doc := range docs {
				cats = append(cats, decodeCategory(userID, doc))
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/categories", Err: err}
	}

	return cats, nil
}

// CreateCategory writes a new category document.
func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", cat.ID))

	fields := map[string]value{
		"name": stringVal(cat.Name),
		"type": stringVal(cat.Type),
	}

	doc, err := c.createDocument(ctx, cat.UserID, collCategories, cat.ID, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/categories", Err: err}
	}

	created := decodeCategory(cat.UserID, *doc)
	return &created, nil
}

// DeleteCategory removes a category document. Transactions referencing the
// category by name are left untouched.
func (c *Client) DeleteCategory(ctx context.Context, userID, catID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", catID))

	if err := c.deleteDocument(ctx, userID, collCategories, catID); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return &domain.ErrNotFound{Resource: "category", ID: catID}
		}
		return &domain.ErrExternalService{Service: "firestore/categories", Err: err}
	}
	return nil
}

// ListBudgets fetches every budget document of one user.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var budgets []domain.Budget

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			docs, err := c.listDocuments(ctx, userID, collBudgets)
			if err != nil {
				return err
			}

			budgets = make([]domain.Budget, 0, len(docs))
			for _, doc := range docs {
				budgets = append(budgets, decodeBudget(userID, doc))
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/budgets", Err: err}
	}

	return budgets, nil
}

// UpsertBudget creates the budget document when it has no ID yet,
// otherwise patches the existing one.
func (c *Client) UpsertBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Firestore.UpsertBudget")
	defer span.End()
	span.SetAttributes(attribute.String("budget.category", budget.Category))

	fields := map[string]value{
		"category": stringVal(budget.Category),
		"amount":   decimalVal(budget.Amount),
	}

	if budget.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}

	doc, err := c.patchDocument(ctx, budget.UserID, collBudgets, budget.ID, fields)
	if errors.Is(err, errStatusNotFound) {
		doc, err = c.createDocument(ctx, budget.UserID, collBudgets, budget.ID, fields)
	}
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/budgets", Err: err}
	}

	saved := decodeBudget(budget.UserID, *doc)
	return &saved, nil
}

// DeleteBudget removes a budget document.
func (c *Client) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.String("budget.id", budgetID))

	if err := c.deleteDocument(ctx, userID, collBudgets, budgetID); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return &domain.ErrNotFound{Resource: "budget", ID: budgetID}
		}
		return &domain.ErrExternalService{Service: "firestore/budgets", Err: err}
	}
	return nil
}
