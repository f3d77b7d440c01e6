// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"sort"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/port"
	"github.com/catatuang/catatuang-go/internal/report"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var txTracer = otel.Tracer("service/transactions")

// TransactionService handles transaction CRUD and filtered queries.
type TransactionService struct {
	store   port.TransactionStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(store port.TransactionStore, metrics *observability.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the user's transactions selected by the filter spec,
// newest first.
func (s *TransactionService) List(ctx context.Context, userID string, spec report.Spec) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("transactions.list", time.Since(start)) }()

	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	filter := report.Resolve(spec, s.now())
	selected := filter.Apply(txns)
	sortNewestFirst(selected)
	return selected, nil
}

// Summary aggregates the transactions selected by the filter spec.
func (s *TransactionService) Summary(ctx context.Context, userID string, spec report.Spec) (*domain.PeriodSummary, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	filter := report.Resolve(spec, s.now())
	summary := report.Summarize(filter.Apply(txns))
	return &summary, nil
}

// Create validates the input and writes a new transaction. The document
// ID and creation time are set server-side.
func (s *TransactionService) Create(ctx context.Context, userID string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     in.Title,
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  in.Category,
		CreatedAt: s.now(),
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("user_id", userID),
		zap.String("transaction_id", created.ID),
		zap.String("type", created.Type),
	)
	return created, nil
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, userID, txID string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:       txID,
		UserID:   userID,
		Title:    in.Title,
		Amount:   in.Amount,
		Type:     in.Type,
		Category: in.Category,
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction updated",
		zap.String("user_id", userID),
		zap.String("transaction_id", txID),
	)
	return updated, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, userID, txID string) error {
	ctx, span := txTracer.Start(ctx, "TransactionService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	if err := s.store.DeleteTransaction(ctx, userID, txID); err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.String("user_id", userID),
		zap.String("transaction_id", txID),
	)
	return nil
}

// sortNewestFirst orders transactions by CreatedAt descending, with ID as
// the tiebreak so equal timestamps keep a stable order.
func sortNewestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].ID < txns[j].ID
	})
}
