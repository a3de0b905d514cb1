package filter

import (
	"fmt"
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

var noteSorts = map[string]Compare[model.Note]{
	"created_at":    byTime(func(n model.Note) time.Time { return n.CreatedAt }),
	"updated_at":    byTime(func(n model.Note) time.Time { return n.UpdatedAt }),
	"last_accessed": byTime(func(n model.Note) time.Time { return n.LastAccessed }),
	"title":         by(func(n model.Note) string { return n.Title }),
	"word_count":    by(func(n model.Note) int { return n.WordCount }),
	"reading_time":  by(func(n model.Note) int { return n.ReadingTime }),
}

func noteTitle(n model.Note) string   { return n.Title }
func noteContent(n model.Note) string { return n.Content }

// Notes builds the predicate and comparator for a note listing.
func Notes(spec model.NoteFilter, loc *time.Location) (Predicate[model.Note], Compare[model.Note], error) {
	order, err := NoteOrder(spec.SortBy, spec.SortOrder)
	if err != nil {
		return nil, nil, err
	}
	from, to, err := parseRange(spec.StartDate, spec.EndDate, loc)
	if err != nil {
		return nil, nil, err
	}

	pred := And(
		Text(spec.Query, noteTitle, noteContent),
		TagsIntersect(spec.Tags, func(n model.Note) []string { return n.Tags }),
		Range(from, to, func(n model.Note) *time.Time { return &n.CreatedAt }),
	)
	return pred, order, nil
}

func NoteOrder(sortBy, sortOrder string) (Compare[model.Note], error) {
	key := sortKey(sortBy)
	field, ok := noteSorts[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown note sort key %q", ErrInvalidFilter, key)
	}
	desc, err := descending(sortOrder)
	if err != nil {
		return nil, err
	}
	return ordered(field, desc,
		func(n model.Note) time.Time { return n.CreatedAt },
		func(n model.Note) int64 { return n.ID },
	), nil
}

// NoteSearch matches title or content, most recently updated first.
func NoteSearch(query string) (Predicate[model.Note], Compare[model.Note], error) {
	pred := Text(query, noteTitle, noteContent)
	if pred == nil {
		return nil, nil, fmt.Errorf("%w: empty search text", ErrInvalidQuery)
	}
	order, _ := NoteOrder("updated_at", orderDesc)
	return pred, order, nil
}
