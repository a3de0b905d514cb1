package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeNotes struct {
	notes []model.Note
	err   error
}

func (f fakeNotes) FindNotes(ctx context.Context, _ int64, pred filter.Predicate[model.Note]) ([]model.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Note, 0)
	for _, n := range f.notes {
		if pred.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeTasks struct {
	tasks []model.Task
	err   error
	// block waits for cancellation so a failing sibling can be observed.
	block bool
}

func (f fakeTasks) FindTasks(ctx context.Context, _ int64, pred filter.Predicate[model.Task]) ([]model.Task, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Task, 0)
	for _, t := range f.tasks {
		if pred.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

var day = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestComposer_Search(t *testing.T) {
	notes := fakeNotes{notes: []model.Note{
		{ID: 1, Title: "Calculus limits", UpdatedAt: day},
		{ID: 2, Title: "Biology", Content: "cell LIMITS", UpdatedAt: day.Add(time.Hour)},
		{ID: 3, Title: "History", UpdatedAt: day.Add(2 * time.Hour)},
	}}
	tasks := fakeTasks{tasks: []model.Task{
		{ID: 10, Title: "Review", Category: "limits", UpdatedAt: day},
		{ID: 11, Title: "Other", UpdatedAt: day},
	}}
	history := NewHistory(0)
	c := NewComposer(notes, tasks, history, zap.NewNop())

	res, err := c.Search(context.Background(), 1, "  Limits ")
	require.NoError(t, err)
	require.Len(t, res.Notes, 2)
	assert.Equal(t, int64(2), res.Notes[0].ID)
	assert.Equal(t, int64(1), res.Notes[1].ID)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, int64(10), res.Tasks[0].ID)
	assert.Equal(t, 3, res.Total)

	entries := history.List(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "Limits", entries[0].Query)
	assert.Equal(t, 3, entries[0].Results)
}

func TestComposer_SearchBlankQuery(t *testing.T) {
	history := NewHistory(0)
	c := NewComposer(fakeNotes{}, fakeTasks{}, history, zap.NewNop())

	for _, q := range []string{"", "   ", "\t"} {
		_, err := c.Search(context.Background(), 1, q)
		assert.ErrorIs(t, err, filter.ErrInvalidQuery, "query %q", q)
	}
	assert.Empty(t, history.List(1))
}

func TestComposer_SearchCapsResults(t *testing.T) {
	var notes []model.Note
	for i := 0; i < MaxResults+10; i++ {
		notes = append(notes, model.Note{ID: int64(i + 1), Title: fmt.Sprintf("note %d", i), UpdatedAt: day.Add(time.Duration(i) * time.Minute)})
	}
	c := NewComposer(fakeNotes{notes: notes}, fakeTasks{}, nil, zap.NewNop())

	res, err := c.Search(context.Background(), 1, "note")
	require.NoError(t, err)
	assert.Len(t, res.Notes, MaxResults)
	assert.Equal(t, int64(MaxResults+10), res.Notes[0].ID)
	assert.NotNil(t, res.Tasks)
	assert.Equal(t, MaxResults, res.Total)
}

func TestComposer_SearchFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	history := NewHistory(0)
	c := NewComposer(fakeNotes{err: storeErr}, fakeTasks{block: true}, history, zap.NewNop())

	_, err := c.Search(context.Background(), 1, "x")
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, history.List(1))
}

func TestHistory_RecordDedupesAndCaps(t *testing.T) {
	h := NewHistory(3)
	for i, q := range []string{"a", "b", "a", "c", "d"} {
		h.Record(1, q, i, day.Add(time.Duration(i)*time.Minute))
	}

	entries := h.List(1)
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Query)
	}
	assert.Equal(t, []string{"d", "c", "a"}, got)
	assert.Empty(t, h.List(2))
}

func TestHistory_Popular(t *testing.T) {
	h := NewHistory(0)
	for i, q := range []string{"go", "sql", "go", "math", "sql", "go", "art"} {
		h.Record(1, q, 0, day.Add(time.Duration(i)*time.Minute))
	}

	assert.Equal(t, []string{"go", "sql", "art", "math"}, h.Popular(1, 0))
	assert.Equal(t, []string{"go"}, h.Popular(1, 1))
	assert.Empty(t, h.Popular(2, 5))
}

func TestHistory_RemoveAndClear(t *testing.T) {
	h := NewHistory(0)
	h.Record(1, "a", 1, day)
	h.Record(1, "b", 1, day)
	h.Record(2, "a", 1, day)

	h.Remove(1, "a")
	assert.Len(t, h.List(1), 1)
	assert.Equal(t, []string{"b"}, h.Popular(1, 5))

	h.Clear(1)
	assert.Empty(t, h.List(1))
	assert.Len(t, h.List(2), 1)
}
