package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/cache"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/service"

	"go.uber.org/zap"
)

func newReportService(tx *mockTransactionStore, settings *mockSettingsStore, watcher *mockWatcher) *service.ReportService {
	return service.NewReportService(
		tx,
		settings,
		watcher,
		cache.New[domain.DerivedState](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestDashboard(t *testing.T) {
	now := time.Now()
	tx := &mockTransactionStore{txns: []domain.Transaction{
		{ID: "a", Amount: dec(100), Type: domain.TypeIncome, Category: "Gaji", CreatedAt: now},
		{ID: "b", Amount: dec(40), Type: domain.TypeExpense, Category: "Makanan", CreatedAt: now},
	}}
	settings := &mockSettingsStore{budgets: []domain.Budget{
		{ID: "b-1", Category: "Makanan", Amount: dec(100)},
	}}
	svc := newReportService(tx, settings, &mockWatcher{})

	state, err := svc.Dashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !state.Balance.Equal(dec(60)) {
		t.Errorf("balance = %s, want 60", state.Balance)
	}
	if !state.Turnover.Equal(dec(140)) {
		t.Errorf("turnover = %s, want 140", state.Turnover)
	}
	if len(state.BudgetProgress) != 1 || state.BudgetProgress[0].Percentage != 40 {
		t.Errorf("budget progress = %+v, want Makanan at 40%%", state.BudgetProgress)
	}
}

func TestDashboard_SecondCallServedFromCache(t *testing.T) {
	tx := &mockTransactionStore{}
	settings := &mockSettingsStore{}
	svc := newReportService(tx, settings, &mockWatcher{})

	if _, err := svc.Dashboard(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Poison the store; a cached second call never touches it.
	tx.err = &domain.ErrExternalService{Service: "firestore/transactions"}
	if _, err := svc.Dashboard(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected cached result, got %v", err)
	}
}

func TestTrend_MonthWindow(t *testing.T) {
	now := time.Now()
	tx := &mockTransactionStore{txns: []domain.Transaction{
		{ID: "a", Amount: dec(10), Type: domain.TypeExpense, Category: "Makanan", CreatedAt: now},
		{ID: "old", Amount: dec(99), Type: domain.TypeExpense, Category: "Makanan", CreatedAt: now.AddDate(0, -3, 0)},
	}}
	svc := newReportService(tx, &mockSettingsStore{}, &mockWatcher{})

	trend, err := svc.Trend(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(trend) != 1 {
		t.Fatalf("expected 1 trend point in current month, got %d", len(trend))
	}
	if !trend[0].Expense.Equal(dec(10)) {
		t.Errorf("expense = %s, want 10", trend[0].Expense)
	}
}

func TestSubscribe_InitialStateThenUpdates(t *testing.T) {
	now := time.Now()
	tx := &mockTransactionStore{txns: []domain.Transaction{
		{ID: "a", Amount: dec(100), Type: domain.TypeIncome, Category: "Gaji", CreatedAt: now},
	}}
	settings := &mockSettingsStore{}
	watcher := &mockWatcher{events: make(chan domain.ChangeEvent, 1)}
	svc := newReportService(tx, settings, watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states, err := svc.Subscribe(ctx, "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first := <-states
	if !first.Balance.Equal(dec(100)) {
		t.Fatalf("initial balance = %s, want 100", first.Balance)
	}

	// A new expense lands; the watcher reports the change.
	tx.txns = append(tx.txns, domain.Transaction{
		ID: "b", Amount: dec(30), Type: domain.TypeExpense, Category: "Makanan", CreatedAt: now,
	})
	watcher.events <- domain.ChangeEvent{UserID: "user-1", Collection: domain.CollectionTransactions}

	select {
	case next := <-states:
		if !next.Balance.Equal(dec(70)) {
			t.Errorf("recomputed balance = %s, want 70", next.Balance)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for recomputed state")
	}
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	watcher := &mockWatcher{events: make(chan domain.ChangeEvent)}
	svc := newReportService(&mockTransactionStore{}, &mockSettingsStore{}, watcher)

	ctx, cancel := context.WithCancel(context.Background())
	states, err := svc.Subscribe(ctx, "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	<-states // initial state
	cancel()

	select {
	case _, ok := <-states:
		if ok {
			t.Error("expected channel to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestRecompute_OrderInsensitive(t *testing.T) {
	now := time.Now()
	svc := newReportService(&mockTransactionStore{}, &mockSettingsStore{}, &mockWatcher{})

	txns := []domain.Transaction{
		{ID: "a", Amount: dec(100), Type: domain.TypeIncome, Category: "Gaji", CreatedAt: now},
		{ID: "b", Amount: dec(40), Type: domain.TypeExpense, Category: "Makanan", CreatedAt: now},
	}
	budgets := []domain.Budget{{ID: "b-1", Category: "Makanan", Amount: dec(80)}}

	// Same latest inputs, no matter which stream updated last.
	viaTxLast := svc.Recompute(domain.Snapshot{Budgets: budgets, Transactions: txns})
	viaBudgetLast := svc.Recompute(domain.Snapshot{Transactions: txns, Budgets: budgets})

	if !viaTxLast.Balance.Equal(viaBudgetLast.Balance) {
		t.Errorf("balance differs by arrival order: %s vs %s", viaTxLast.Balance, viaBudgetLast.Balance)
	}
	if len(viaTxLast.BudgetProgress) != len(viaBudgetLast.BudgetProgress) {
		t.Errorf("budget progress differs by arrival order")
	}
}
