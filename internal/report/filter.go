// Package report is the aggregation core: pure, total functions that turn
// a raw transaction list into balances, category totals, monthly budget
// spend, trend series and a resolved filter predicate. Nothing in this
// package performs I/O or holds state; every function is safe to re-run on
// any snapshot at any time.
package report

import (
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
)

// Filter modes. A mode names a time-range selection strategy; the resolved
// range is combined with the optional type/category predicate.
const (
	ModeToday     = "today"
	ModeLast7Days = "last_7_days"
	ModeMonth     = "month"
	ModeCustom    = "custom"
)

// Sentinels. TypeAll disables the type filter and, with it, the category
// filter; CategoryAll ("Semua" = "All") disables only the category filter.
const (
	TypeAll     = "all"
	CategoryAll = "Semua"
)

// Spec is a user-selected filter specification as it arrives from the
// client: a mode plus mode-specific parameters and the optional
// type/category narrowing.
type Spec struct {
	Mode        string
	MonthOffset int
	Start       *time.Time
	End         *time.Time
	Type        string
	Category    string
}

// Range is a resolved inclusive [Start, End] time window. An Empty range
// matches nothing, regardless of its bounds.
type Range struct {
	Start time.Time
	End   time.Time
	Empty bool
}

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	if r.Empty {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// Filter is a resolved Spec: a concrete date range plus the effective
// type/category predicate. Zero-value Type/Category mean "no filter".
type Filter struct {
	Range    Range
	Type     string
	Category string
}

// Match reports whether a transaction is selected by the filter.
func (f Filter) Match(tx domain.Transaction) bool {
	if !f.Range.Contains(tx.CreatedAt) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	return true
}

// Apply returns the subset of txns selected by the filter, preserving order.
func (f Filter) Apply(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, tx := range txns {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Resolve turns a Spec into a concrete Filter, evaluated against now.
// It is deterministic and side-effect free; now is passed in rather than
// read from the clock so callers (and tests) control the reference point.
//
// Mode semantics:
//   - today: local midnight through 23:59:59 of the same day.
//   - last_7_days: exactly now minus 7 days (time-of-day preserved) through
//     23:59:59 today. Only the end of the range is truncated to a day edge.
//   - month: first day 00:00:00 through last day 23:59:59 of the month
//     MonthOffset months away. Offset 0 is the current month; callers guard
//     against positive offsets, not this function.
//   - custom: the given bounds, with End normalized to 23:59:59 of its
//     calendar day. A missing bound yields an empty range.
func Resolve(spec Spec, now time.Time) Filter {
	f := Filter{}

	switch spec.Mode {
	case ModeToday:
		f.Range = Range{Start: startOfDay(now), End: endOfDay(now)}
	case ModeLast7Days:
		f.Range = Range{Start: now.AddDate(0, 0, -7), End: endOfDay(now)}
	case ModeCustom:
		if spec.Start == nil || spec.End == nil {
			f.Range = Range{Empty: true}
		} else {
			f.Range = Range{Start: *spec.Start, End: endOfDay(*spec.End)}
		}
	default: // ModeMonth
		f.Range = MonthRange(now, spec.MonthOffset)
	}

	// Selecting "all types" forces the category filter off: the client's
	// category dropdown is type-scoped and meaningless without a type.
	if spec.Type != "" && spec.Type != TypeAll {
		f.Type = spec.Type
		if spec.Category != "" && spec.Category != CategoryAll {
			f.Category = spec.Category
		}
	}

	return f
}

// MonthRange returns the full calendar month offset months away from ref's
// month, in ref's location.
func MonthRange(ref time.Time, offset int) Range {
	y, m, _ := ref.Date()
	start := time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, ref.Location())
	// Day 0 of the following month is the last day of the target month.
	end := time.Date(y, m+time.Month(offset)+1, 0, 23, 59, 59, 0, ref.Location())
	return Range{Start: start, End: end}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
