// Package filter builds record predicates and sort comparators from a filter
// specification. Each criterion is one of a closed set of variants (text
// match, tag intersection, equality, time range) combined with And / Or.
package filter

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidQuery  = errors.New("invalid query")
)

// Predicate reports whether a record matches. A nil Predicate matches everything.
type Predicate[T any] func(T) bool

func (p Predicate[T]) Match(v T) bool {
	return p == nil || p(v)
}

// Compare orders two records the way slices.SortStableFunc expects.
type Compare[T any] func(a, b T) int

// Text matches records where any of the fields contains query, ignoring case.
// A blank query yields a nil predicate.
func Text[T any](query string, fields ...func(T) string) Predicate[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(fields) == 0 {
		return nil
	}
	return func(v T) bool {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(v)), q) {
				return true
			}
		}
		return false
	}
}

// TagsIntersect matches records sharing at least one tag with tags.
// Blank entries are ignored; no usable tags yields a nil predicate.
func TagsIntersect[T any](tags []string, get func(T) []string) Predicate[T] {
	want := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			want[trimmed] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}
	return func(v T) bool {
		for _, tag := range get(v) {
			if _, ok := want[tag]; ok {
				return true
			}
		}
		return false
	}
}

func Equal[T any, V comparable](want V, get func(T) V) Predicate[T] {
	return func(v T) bool {
		return get(v) == want
	}
}

// Range matches records whose time lies within [from, to]. Either bound may be
// nil; with both nil the predicate is nil. Records without a time never match
// a bounded range.
func Range[T any](from, to *time.Time, get func(T) *time.Time) Predicate[T] {
	if from == nil && to == nil {
		return nil
	}
	return func(v T) bool {
		ts := get(v)
		if ts == nil {
			return false
		}
		if from != nil && ts.Before(*from) {
			return false
		}
		if to != nil && ts.After(*to) {
			return false
		}
		return true
	}
}

// And matches when every non-nil predicate matches.
func And[T any](ps ...Predicate[T]) Predicate[T] {
	active := compact(ps)
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(v T) bool {
		for _, p := range active {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Or matches when any non-nil predicate matches.
func Or[T any](ps ...Predicate[T]) Predicate[T] {
	active := compact(ps)
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(v T) bool {
		for _, p := range active {
			if p(v) {
				return true
			}
		}
		return false
	}
}

func compact[T any](ps []Predicate[T]) []Predicate[T] {
	out := make([]Predicate[T], 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
