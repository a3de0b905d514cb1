package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

var taskSorts = map[string]Compare[model.Task]{
	"created_at":   byTime(func(t model.Task) time.Time { return t.CreatedAt }),
	"updated_at":   byTime(func(t model.Task) time.Time { return t.UpdatedAt }),
	"due_date":     byOptionalTime(func(t model.Task) *time.Time { return t.DueDate }),
	"completed_at": byOptionalTime(func(t model.Task) *time.Time { return t.CompletedAt }),
	"title":        by(func(t model.Task) string { return t.Title }),
	"priority":     by(func(t model.Task) int { return t.Priority.Rank() }),
	"status":       by(func(t model.Task) string { return string(t.Status) }),
	"order":        by(func(t model.Task) int { return t.Order }),
	"category":     by(func(t model.Task) string { return t.Category }),
}

var taskDateFields = map[string]func(model.Task) *time.Time{
	"created_at": func(t model.Task) *time.Time { return &t.CreatedAt },
	"due_date":   func(t model.Task) *time.Time { return t.DueDate },
}

func taskTitle(t model.Task) string       { return t.Title }
func taskDescription(t model.Task) string { return t.Description }
func taskCategory(t model.Task) string    { return t.Category }

// Tasks builds the predicate and comparator for a task listing.
func Tasks(spec model.TaskFilter, loc *time.Location) (Predicate[model.Task], Compare[model.Task], error) {
	order, err := TaskOrder(spec.SortBy, spec.SortOrder)
	if err != nil {
		return nil, nil, err
	}

	preds := []Predicate[model.Task]{
		Text(spec.Query, taskTitle, taskDescription, taskCategory),
	}

	if status := strings.TrimSpace(spec.Status); status != "" {
		if !model.Status(status).Valid() {
			return nil, nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, status)
		}
		preds = append(preds, Equal(model.Status(status), func(t model.Task) model.Status { return t.Status }))
	}
	if priority := strings.TrimSpace(spec.Priority); priority != "" {
		if !model.Priority(priority).Valid() {
			return nil, nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidFilter, priority)
		}
		preds = append(preds, Equal(model.Priority(priority), func(t model.Task) model.Priority { return t.Priority }))
	}

	field := strings.TrimSpace(spec.DateField)
	if field == "" {
		field = "created_at"
	}
	getDate, ok := taskDateFields[field]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown date field %q", ErrInvalidFilter, field)
	}
	from, to, err := parseRange(spec.StartDate, spec.EndDate, loc)
	if err != nil {
		return nil, nil, err
	}
	preds = append(preds, Range(from, to, getDate))

	return And(preds...), order, nil
}

func TaskOrder(sortBy, sortOrder string) (Compare[model.Task], error) {
	key := sortKey(sortBy)
	field, ok := taskSorts[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown task sort key %q", ErrInvalidFilter, key)
	}
	desc, err := descending(sortOrder)
	if err != nil {
		return nil, err
	}
	return ordered(field, desc,
		func(t model.Task) time.Time { return t.CreatedAt },
		func(t model.Task) int64 { return t.ID },
	), nil
}

// TaskSearch matches title, description or category, most recently updated first.
func TaskSearch(query string) (Predicate[model.Task], Compare[model.Task], error) {
	pred := Text(query, taskTitle, taskDescription, taskCategory)
	if pred == nil {
		return nil, nil, fmt.Errorf("%w: empty search text", ErrInvalidQuery)
	}
	order, _ := TaskOrder("updated_at", orderDesc)
	return pred, order, nil
}

// DueBetween matches tasks due within [from, to].
func DueBetween(from, to time.Time) Predicate[model.Task] {
	return Range(&from, &to, func(t model.Task) *time.Time { return t.DueDate })
}

// Overdue matches pending tasks whose due date is before now.
func Overdue(now time.Time) Predicate[model.Task] {
	return func(t model.Task) bool { return t.IsOverdue(now) }
}
