package repo

import (
	"context"
	"errors"
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

var (
	ErrorNotFound       = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NoteRepository определяет интерфейс для работы с заметками.
// Every call is scoped to one owner; records of other owners are invisible.
type NoteRepository interface {
	CreateNote(ctx context.Context, n model.Note) (model.Note, error)
	GetNote(ctx context.Context, ownerID, id int64) (model.Note, error)
	// FindNotes returns the owner's notes matching pred (nil matches all) in creation order.
	FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error)
	CountNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) (int, error)
	UpdateNote(ctx context.Context, n model.Note) (model.Note, error)
	TouchNote(ctx context.Context, ownerID, id int64, at time.Time) error
	DeleteNotes(ctx context.Context, ownerID int64, ids []int64) (int, error)
}

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	GetTask(ctx context.Context, ownerID, id int64) (model.Task, error)
	FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error)
	CountTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) (int, error)
	UpdateTask(ctx context.Context, t model.Task) (model.Task, error)
	DeleteTasks(ctx context.Context, ownerID int64, ids []int64) (int, error)
}

type Store interface {
	NoteRepository
	TaskRepository
	Close() error
}

func keep[T any](records []T, pred filter.Predicate[T]) []T {
	if pred == nil {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
