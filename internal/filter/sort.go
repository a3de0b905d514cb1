package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

const (
	defaultSortKey = "created_at"
	orderAsc       = "asc"
	orderDesc      = "desc"
)

func sortKey(raw string) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		return defaultSortKey
	}
	return key
}

func descending(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", orderDesc:
		return true, nil
	case orderAsc:
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown sort order %q", ErrInvalidFilter, raw)
}

// ordered wraps a field comparison with direction and a creation-order tiebreak.
func ordered[T any](field Compare[T], desc bool, createdAt func(T) time.Time, id func(T) int64) Compare[T] {
	return func(a, b T) int {
		c := field(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c := createdAt(a).Compare(createdAt(b)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	}
}

func by[T any, V cmp.Ordered](get func(T) V) Compare[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

func byTime[T any](get func(T) time.Time) Compare[T] {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

// byOptionalTime places records without a time before any record with one, so
// they come first ascending and last descending (MySQL NULL ordering).
func byOptionalTime[T any](get func(T) *time.Time) Compare[T] {
	return func(a, b T) int {
		ta, tb := get(a), get(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return -1
		case tb == nil:
			return 1
		}
		return ta.Compare(*tb)
	}
}
