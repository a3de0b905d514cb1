// Package query applies a predicate, an ordering and optional pagination to
// an already owner-scoped record collection. It never mutates its input.
package query

import (
	"slices"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Run returns the records matching pred, ordered by order. A nil order keeps
// the input order.
func Run[T any](records []T, pred filter.Predicate[T], order filter.Compare[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred.Match(r) {
			out = append(out, r)
		}
	}
	if order != nil {
		slices.SortStableFunc(out, order)
	}
	return out
}

// Limit returns the first n records of an ordered slice.
func Limit[T any](records []T, n int) []T {
	if n >= 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// Paginate cuts one 1-based page out of an ordered result. Total is always the
// size of the whole result; a page past the end has no items.
func Paginate[T any](ordered []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total := len(ordered)
	totalPages := (total + limit - 1) / limit
	items := []T{}
	// сравниваем номера страниц, а не смещение: (page-1)*limit переполняется
	if page <= totalPages {
		offset := (page - 1) * limit
		end := min(offset+limit, total)
		items = append(items, ordered[offset:end]...)
	}

	return Page[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
