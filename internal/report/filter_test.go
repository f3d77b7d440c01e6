package report_test

import (
	"testing"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/report"
)

// Fixed reference point for all filter tests: Wed 2025-10-15 14:30:45 local.
var now = time.Date(2025, 10, 15, 14, 30, 45, 0, time.Local)

func TestResolve_Today(t *testing.T) {
	f := report.Resolve(report.Spec{Mode: report.ModeToday}, now)

	wantStart := time.Date(2025, 10, 15, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2025, 10, 15, 23, 59, 59, 0, time.Local)
	if !f.Range.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", f.Range.Start, wantStart)
	}
	if !f.Range.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", f.Range.End, wantEnd)
	}
}

func TestResolve_Last7Days(t *testing.T) {
	f := report.Resolve(report.Spec{Mode: report.ModeLast7Days}, now)

	// Lower bound keeps the time of day; only the upper bound is
	// day-truncated. Inherited asymmetry, kept as-is.
	wantStart := time.Date(2025, 10, 8, 14, 30, 45, 0, time.Local)
	wantEnd := time.Date(2025, 10, 15, 23, 59, 59, 0, time.Local)
	if !f.Range.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", f.Range.Start, wantStart)
	}
	if !f.Range.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", f.Range.End, wantEnd)
	}
}

func TestResolve_Month(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"current month", 0,
			time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 10, 31, 23, 59, 59, 0, time.Local),
		},
		{
			"previous month", -1,
			time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 9, 30, 23, 59, 59, 0, time.Local),
		},
		{
			"across year boundary", -10,
			time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local),
			time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := report.Resolve(report.Spec{Mode: report.ModeMonth, MonthOffset: tt.offset}, now)
			if !f.Range.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", f.Range.Start, tt.wantStart)
			}
			if !f.Range.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", f.Range.End, tt.wantEnd)
			}
		})
	}
}

func TestResolve_CustomMissingBoundIsEmpty(t *testing.T) {
	end := time.Date(2025, 10, 10, 12, 0, 0, 0, time.Local)
	f := report.Resolve(report.Spec{Mode: report.ModeCustom, End: &end}, now)

	if !f.Range.Empty {
		t.Fatal("custom range without a start must be empty")
	}
	// An empty range selects nothing, whatever the transactions look like.
	selected := f.Apply([]domain.Transaction{
		tx(100, domain.TypeIncome, "Gaji", end),
	})
	if len(selected) != 0 {
		t.Errorf("empty range selected %d transactions", len(selected))
	}
}

func TestResolve_CustomEndNormalizedToEndOfDay(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2025, 10, 10, 9, 15, 0, 0, time.Local) // mid-morning
	f := report.Resolve(report.Spec{Mode: report.ModeCustom, Start: &start, End: &end}, now)

	wantEnd := time.Date(2025, 10, 10, 23, 59, 59, 0, time.Local)
	if !f.Range.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", f.Range.End, wantEnd)
	}

	evening := tx(10, domain.TypeExpense, "Makanan", time.Date(2025, 10, 10, 21, 0, 0, 0, time.Local))
	if !f.Match(evening) {
		t.Error("transaction later the same day as the end bound must match")
	}
}

func TestResolve_TypeAllDisablesCategoryFilter(t *testing.T) {
	f := report.Resolve(report.Spec{
		Mode:     report.ModeMonth,
		Type:     report.TypeAll,
		Category: "Makanan",
	}, now)

	other := tx(10, domain.TypeExpense, "Transport", now)
	if !f.Match(other) {
		t.Error("selecting all types must ignore the category value")
	}
}

func TestResolve_TypeAndCategory(t *testing.T) {
	f := report.Resolve(report.Spec{
		Mode:     report.ModeMonth,
		Type:     domain.TypeExpense,
		Category: "Makanan",
	}, now)

	if !f.Match(tx(10, domain.TypeExpense, "Makanan", now)) {
		t.Error("matching type+category rejected")
	}
	if f.Match(tx(10, domain.TypeExpense, "Transport", now)) {
		t.Error("wrong category accepted")
	}
	if f.Match(tx(10, domain.TypeIncome, "Makanan", now)) {
		t.Error("wrong type accepted")
	}
}

func TestResolve_CategorySentinel(t *testing.T) {
	f := report.Resolve(report.Spec{
		Mode:     report.ModeMonth,
		Type:     domain.TypeExpense,
		Category: report.CategoryAll,
	}, now)

	if f.Category != "" {
		t.Errorf("sentinel category must resolve to no filter, got %q", f.Category)
	}
	if !f.Match(tx(10, domain.TypeExpense, "Transport", now)) {
		t.Error("sentinel category must not narrow the selection")
	}
}

func TestRange_ContainsInclusive(t *testing.T) {
	r := report.MonthRange(now, 0)

	if !r.Contains(r.Start) {
		t.Error("range must include its start bound")
	}
	if !r.Contains(r.End) {
		t.Error("range must include its end bound")
	}
	if r.Contains(r.Start.Add(-time.Second)) {
		t.Error("range must exclude the second before start")
	}
	if r.Contains(r.End.Add(time.Second)) {
		t.Error("range must exclude the second after end")
	}
}
