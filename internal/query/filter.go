package query

import (
	"slices"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
)

// Dated is a record with a timestamp
type Dated interface {
	Timestamp() time.Time
}

// Kinded is a record with an income/expense kind
type Kinded interface {
	RecordKind() domain.Kind
}

// FilterByKind keeps the records of the given kind, preserving order
func FilterByKind[T Kinded](records []T, kind domain.Kind) []T {
	result := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordKind() == kind {
			result = append(result, r)
		}
	}
	return result
}

// MonthRange returns the first and last instant (millisecond precision) of a
// 1-based month in loc
func MonthRange(month, year int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// InMonth reports whether t falls inside the 1-based month in loc.
// Both month boundaries are inclusive.
func InMonth(t time.Time, month, year int, loc *time.Location) bool {
	start, _ := MonthRange(month, year, loc)
	next := start.AddDate(0, 1, 0)
	return !t.Before(start) && t.Before(next)
}

// FilterByMonth keeps the records dated inside the 1-based month, preserving order
func FilterByMonth[T Dated](records []T, month, year int, loc *time.Location) []T {
	result := make([]T, 0, len(records))
	for _, r := range records {
		if InMonth(r.Timestamp(), month, year, loc) {
			result = append(result, r)
		}
	}
	return result
}

// SortByDateDescending returns a copy ordered newest first. Equal timestamps keep
// their original relative order.
func SortByDateDescending[T Dated](records []T) []T {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return b.Timestamp().Compare(a.Timestamp())
	})
	return sorted
}

// Take returns at most n leading records. n <= 0 means no limit.
func Take[T any](records []T, n int) []T {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}

// ApplyTransactionQuery filters by kind, then by month, then sorts newest first and
// applies the limit
func ApplyTransactionQuery(records []domain.Transaction, q domain.TransactionQuery, loc *time.Location) []domain.Transaction {
	result := records
	if q.Kind != nil {
		result = FilterByKind(result, *q.Kind)
	}
	if q.HasMonth() {
		result = FilterByMonth(result, q.Month, q.Year, loc)
	}
	result = SortByDateDescending(result)
	return Take(result, q.Limit)
}

// ApplyCategoryQuery filters categories by kind
func ApplyCategoryQuery(records []domain.Category, q domain.CategoryQuery) []domain.Category {
	if q.Kind == nil {
		return slices.Clone(records)
	}
	return FilterByKind(records, *q.Kind)
}

// ApplyBudgetQuery filters budgets by category and month/year equality and applies
// the limit
func ApplyBudgetQuery(records []domain.Budget, q domain.BudgetQuery) []domain.Budget {
	result := make([]domain.Budget, 0, len(records))
	for _, b := range records {
		if q.Category != nil && b.Category != *q.Category {
			continue
		}
		if q.Month != 0 && b.Month != q.Month {
			continue
		}
		if q.Year != 0 && b.Year != q.Year {
			continue
		}
		result = append(result, b)
	}
	return Take(result, q.Limit)
}
