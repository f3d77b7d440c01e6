package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/report"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func tx(amount int64, txType, category string, createdAt time.Time) domain.Transaction {
	return domain.Transaction{
		Amount:    dec(amount),
		Type:      txType,
		Category:  category,
		CreatedAt: createdAt,
	}
}

var (
	d1 = time.Date(2025, 10, 2, 9, 30, 0, 0, time.Local)
	d2 = time.Date(2025, 10, 5, 18, 15, 0, 0, time.Local)
)

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name string
		txns []domain.Transaction
		want int64
	}{
		{"empty", nil, 0},
		{"all income", []domain.Transaction{
			tx(100, domain.TypeIncome, "Gaji", d1),
			tx(50, domain.TypeIncome, "Bonus", d1),
		}, 150},
		{"all expense", []domain.Transaction{
			tx(70, domain.TypeExpense, "Makanan", d1),
			tx(30, domain.TypeExpense, "Transport", d2),
		}, -100},
		{"mixed", []domain.Transaction{
			tx(100, domain.TypeIncome, "Gaji", d1),
			tx(40, domain.TypeExpense, "Makanan", d1),
			tx(20, domain.TypeExpense, "Makanan", d2),
		}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := report.ComputeBalance(tt.txns)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("balance = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeCategoryTotals(t *testing.T) {
	txns := []domain.Transaction{
		tx(100, domain.TypeIncome, "Gaji", d1),
		tx(40, domain.TypeExpense, "Makanan", d1),
		tx(20, domain.TypeExpense, "Makanan", d2),
	}

	totals, turnover := report.ComputeCategoryTotals(txns)

	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Name != "Gaji" || !totals[0].Value.Equal(dec(100)) {
		t.Errorf("totals[0] = %s/%s, want Gaji/100", totals[0].Name, totals[0].Value)
	}
	if totals[1].Name != "Makanan" || !totals[1].Value.Equal(dec(60)) {
		t.Errorf("totals[1] = %s/%s, want Makanan/60", totals[1].Name, totals[1].Value)
	}
	// Turnover equals the sum of all category values, which equals the
	// sum of all amounts regardless of type.
	if !turnover.Equal(dec(160)) {
		t.Errorf("turnover = %s, want 160", turnover)
	}
}

func TestComputeCategoryTotals_FallbackLabel(t *testing.T) {
	txns := []domain.Transaction{
		tx(25, domain.TypeExpense, "", d1),
	}

	totals, _ := report.ComputeCategoryTotals(txns)
	if len(totals) != 1 || totals[0].Name != domain.FallbackCategory {
		t.Fatalf("expected fallback category %q, got %+v", domain.FallbackCategory, totals)
	}
}

func TestComputeCategoryTotals_CaseSensitive(t *testing.T) {
	txns := []domain.Transaction{
		tx(10, domain.TypeExpense, "makanan", d1),
		tx(10, domain.TypeExpense, "Makanan", d1),
	}

	totals, _ := report.ComputeCategoryTotals(txns)
	if len(totals) != 2 {
		t.Errorf("case-differing categories must not merge, got %d buckets", len(totals))
	}
}

func TestComputeCategoryTotals_Empty(t *testing.T) {
	totals, turnover := report.ComputeCategoryTotals(nil)
	if len(totals) != 0 {
		t.Errorf("expected empty totals, got %d", len(totals))
	}
	if !turnover.IsZero() {
		t.Errorf("expected zero turnover, got %s", turnover)
	}
}

func TestComputeMonthlySpend(t *testing.T) {
	ref := time.Date(2025, 10, 15, 12, 0, 0, 0, time.Local)
	txns := []domain.Transaction{
		// In month, expense: counted.
		tx(40, domain.TypeExpense, "Makanan", time.Date(2025, 10, 3, 8, 0, 0, 0, time.Local)),
		tx(20, domain.TypeExpense, "Makanan", time.Date(2025, 10, 10, 8, 0, 0, 0, time.Local)),
		// In month, income: ignored.
		tx(500, domain.TypeIncome, "Gaji", time.Date(2025, 10, 1, 9, 0, 0, 0, time.Local)),
		// Previous month: ignored.
		tx(99, domain.TypeExpense, "Makanan", time.Date(2025, 9, 30, 23, 0, 0, 0, time.Local)),
		// After ref: ignored.
		tx(11, domain.TypeExpense, "Makanan", time.Date(2025, 10, 20, 8, 0, 0, 0, time.Local)),
	}

	spend := report.ComputeMonthlySpend(txns, ref)

	if len(spend) != 1 {
		t.Fatalf("expected 1 category, got %d", len(spend))
	}
	if !spend["Makanan"].Equal(dec(60)) {
		t.Errorf("Makanan spend = %s, want 60", spend["Makanan"])
	}
}

func TestComputeTrend(t *testing.T) {
	txns := []domain.Transaction{
		// d2 first: input order must not matter.
		tx(20, domain.TypeExpense, "Makanan", d2),
		tx(100, domain.TypeIncome, "Gaji", d1),
		tx(40, domain.TypeExpense, "Makanan", d1),
	}

	trend := report.ComputeTrend(txns)

	if len(trend) != 2 {
		t.Fatalf("expected 2 points, got %d", len(trend))
	}
	if trend[0].Date != "2025-10-02" || !trend[0].Income.Equal(dec(100)) || !trend[0].Expense.Equal(dec(40)) {
		t.Errorf("trend[0] = %+v, want 2025-10-02 income=100 expense=40", trend[0])
	}
	if trend[1].Date != "2025-10-05" || !trend[1].Income.IsZero() || !trend[1].Expense.Equal(dec(20)) {
		t.Errorf("trend[1] = %+v, want 2025-10-05 income=0 expense=20", trend[1])
	}
}

func TestComputeTrend_SameDayMerges(t *testing.T) {
	morning := time.Date(2025, 10, 2, 7, 0, 0, 0, time.Local)
	evening := time.Date(2025, 10, 2, 22, 45, 0, 0, time.Local)
	txns := []domain.Transaction{
		tx(10, domain.TypeExpense, "Makanan", morning),
		tx(15, domain.TypeExpense, "Makanan", evening),
	}

	trend := report.ComputeTrend(txns)

	if len(trend) != 1 {
		t.Fatalf("same local day must merge into one bucket, got %d", len(trend))
	}
	if !trend[0].Expense.Equal(dec(25)) {
		t.Errorf("merged expense = %s, want 25", trend[0].Expense)
	}
}

func TestComputeTrend_SortedNoDuplicates(t *testing.T) {
	txns := []domain.Transaction{
		tx(1, domain.TypeIncome, "Gaji", time.Date(2025, 10, 9, 1, 0, 0, 0, time.Local)),
		tx(2, domain.TypeIncome, "Gaji", time.Date(2025, 10, 1, 1, 0, 0, 0, time.Local)),
		tx(3, domain.TypeIncome, "Gaji", time.Date(2025, 10, 5, 1, 0, 0, 0, time.Local)),
		tx(4, domain.TypeIncome, "Gaji", time.Date(2025, 10, 5, 9, 0, 0, 0, time.Local)),
	}

	trend := report.ComputeTrend(txns)

	seen := make(map[string]bool)
	for i, p := range trend {
		if seen[p.Date] {
			t.Errorf("duplicate date key %s", p.Date)
		}
		seen[p.Date] = true
		if i > 0 && trend[i-1].Date >= p.Date {
			t.Errorf("trend not strictly ascending: %s before %s", trend[i-1].Date, p.Date)
		}
	}
}

func TestComputeTrend_Empty(t *testing.T) {
	if got := report.ComputeTrend(nil); len(got) != 0 {
		t.Errorf("expected empty trend, got %d points", len(got))
	}
}

func TestSummarize(t *testing.T) {
	txns := []domain.Transaction{
		tx(100, domain.TypeIncome, "Gaji", d1),
		tx(40, domain.TypeExpense, "Makanan", d1),
		tx(20, domain.TypeExpense, "Makanan", d2),
	}

	sum := report.Summarize(txns)

	if !sum.Income.Equal(dec(100)) || !sum.Expense.Equal(dec(60)) || !sum.Net.Equal(dec(40)) {
		t.Errorf("summary = %+v, want income=100 expense=60 net=40", sum)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3", sum.Count)
	}
}
