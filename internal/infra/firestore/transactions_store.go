package firestore

import (
	"context"
	"errors"
	"net/http"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Transactions — implements port.TransactionStore
// ============================================================

const collTransactions = "transactions"

func transactionFields(tx *domain.Transaction) map[string]value {
	return map[string]value{
		"title":     stringVal(tx.Title),
		"amount":    decimalVal(tx.Amount),
		"type":      stringVal(tx.Type),
		"category":  stringVal(tx.Category),
		"createdAt": timeVal(tx.CreatedAt),
	}
}

func decodeTransaction(userID string, doc document) domain.Transaction {
	return domain.Transaction{
		ID:        docID(doc.Name),
		UserID:    userID,
		Title:     doc.Fields["title"].asString(),
		Amount:    doc.Fields["amount"].asDecimal(),
		Type:      doc.Fields["type"].asString(),
		Category:  doc.Fields["category"].asString(),
		CreatedAt: doc.Fields["createdAt"].asTime(),
	}
}

// ListTransactions fetches every transaction document of one user.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var txns []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			docs, err := c.listDocuments(ctx, userID, collTransactions)
			if err != nil {
				return err
			}

			txns = make([]domain.Transaction, 0, len(docs))
			for _, doc := range docs {
				txns = append(txns, decodeTransaction(userID, doc))
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}

	return txns, nil
}

// GetTransaction fetches a single transaction document.
func (c *Client) GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	path := c.collectionPath(userID, collTransactions) + "/" + txID
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &domain.ErrNotFound{Resource: "transaction", ID: txID}
		}
		return nil, &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}

	tx := decodeTransaction(userID, *doc)
	return &tx, nil
}

// CreateTransaction writes a new transaction document under the caller's
// pre-generated ID.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", tx.ID))

	doc, err := c.createDocument(ctx, tx.UserID, collTransactions, tx.ID, transactionFields(tx))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}

	created := decodeTransaction(tx.UserID, *doc)
	return &created, nil
}

// UpdateTransaction replaces the mutable fields of a transaction.
// CreatedAt is not part of the update mask and keeps its stored value.
func (c *Client) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", tx.ID))

	fields := map[string]value{
		"title":    stringVal(tx.Title),
		"amount":   decimalVal(tx.Amount),
		"type":     stringVal(tx.Type),
		"category": stringVal(tx.Category),
	}

	doc, err := c.patchDocument(ctx, tx.UserID, collTransactions, tx.ID, fields)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
		}
		return nil, &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}

	updated := decodeTransaction(tx.UserID, *doc)
	return &updated, nil
}

// DeleteTransaction removes a transaction document.
func (c *Client) DeleteTransaction(ctx context.Context, userID, txID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	if err := c.deleteDocument(ctx, userID, collTransactions, txID); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return &domain.ErrNotFound{Resource: "transaction", ID: txID}
		}
		return &domain.ErrExternalService{Service: "firestore/transactions", Err: err}
	}
	return nil
}
