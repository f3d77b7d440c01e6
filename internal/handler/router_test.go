package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/handler"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stubVerifier accepts a single known token.
type stubVerifier struct {
	token  string
	userID string
}

func (v *stubVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken != v.token {
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}
	return v.userID, nil
}

// stubTransactionStore serves a fixed transaction list.
type stubTransactionStore struct {
	txns []domain.Transaction
	err  error
}

func (s *stubTransactionStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.txns, s.err
}

func (s *stubTransactionStore) GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: txID}
}

func (s *stubTransactionStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, nil
}

func (s *stubTransactionStore) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, nil
}

func (s *stubTransactionStore) DeleteTransaction(ctx context.Context, userID, txID string) error {
	return nil
}

func newTestRouter(store *stubTransactionStore) http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	svcs := handler.Services{
		Verifier: &stubVerifier{token: "good-token", userID: "user-1"},
	}
	if store != nil {
		svcs.Transactions = service.NewTransactionService(store, metrics, logger)
	}
	return handler.NewRouter(svcs, metrics, logger)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_DegradedWhenStoreFails(t *testing.T) {
	store := &stubTransactionStore{err: errors.New("connection refused")}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status domain.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("expected degraded, got %q", status.Status)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/summary", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoute_MissingToken(t *testing.T) {
	router := newTestRouter(&stubTransactionStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRoute_MalformedHeader(t *testing.T) {
	router := newTestRouter(&stubTransactionStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRoute_RejectedToken(t *testing.T) {
	router := newTestRouter(&stubTransactionStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer forged-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListTransactions_Authorized(t *testing.T) {
	store := &stubTransactionStore{txns: []domain.Transaction{
		{
			ID:        "t-1",
			UserID:    "user-1",
			Title:     "Gaji",
			Amount:    decimal.NewFromInt(5000000),
			Type:      domain.TypeIncome,
			Category:  "Gaji",
			CreatedAt: time.Now(),
		},
	}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions?mode=today", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Transactions) != 1 || body.Transactions[0].ID != "t-1" {
		t.Errorf("unexpected transactions: %+v", body.Transactions)
	}
}

func TestListTransactions_InvalidMonthOffset(t *testing.T) {
	router := newTestRouter(&stubTransactionStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions?mode=month&monthOffset=1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListTransactions_UnknownMode(t *testing.T) {
	router := newTestRouter(&stubTransactionStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions?mode=yesterday", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
