package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

// MemoryStore keeps notes and tasks in process memory. Build one per
// application (or per test) and call Reset to drop everything.
type MemoryStore struct {
	mu      sync.RWMutex
	notes   map[int64]model.Note
	tasks   map[int64]model.Task
	noteSeq int64
	taskSeq int64
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.Reset()
	return s
}

func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = make(map[int64]model.Note)
	s.tasks = make(map[int64]model.Task)
	s.noteSeq, s.taskSeq = 0, 0
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateNote(ctx context.Context, n model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return n, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noteSeq++
	n.ID = s.noteSeq
	s.notes[n.ID] = cloneNote(n)
	return cloneNote(n), nil
}

func (s *MemoryStore) GetNote(ctx context.Context, ownerID, id int64) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != ownerID {
		return model.Note{}, ErrorNotFound
	}
	return cloneNote(n), nil
}

func (s *MemoryStore) FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Note, 0)
	for _, n := range s.notes {
		if n.UserID == ownerID {
			out = append(out, cloneNote(n))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Note) int {
		return creationOrder(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return keep(out, pred), nil
}

func (s *MemoryStore) CountNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) (int, error) {
	notes, err := s.FindNotes(ctx, ownerID, pred)
	return len(notes), err
}

func (s *MemoryStore) UpdateNote(ctx context.Context, n model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return n, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.notes[n.ID]
	if !ok || cur.UserID != n.UserID {
		return n, ErrorNotFound
	}
	n.CreatedAt = cur.CreatedAt
	s.notes[n.ID] = cloneNote(n)
	return cloneNote(n), nil
}

func (s *MemoryStore) TouchNote(ctx context.Context, ownerID, id int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != ownerID {
		return ErrorNotFound
	}
	n.LastAccessed = at
	s.notes[id] = n
	return nil
}

func (s *MemoryStore) DeleteNotes(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if n, ok := s.notes[id]; ok && n.UserID == ownerID {
			delete(s.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return t, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskSeq++
	t.ID = s.taskSeq
	s.tasks[t.ID] = cloneTask(t)
	return cloneTask(t), nil
}

func (s *MemoryStore) GetTask(ctx context.Context, ownerID, id int64) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return model.Task{}, ErrorNotFound
	}
	return cloneTask(t), nil
}

func (s *MemoryStore) FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			out = append(out, cloneTask(t))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Task) int {
		return creationOrder(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return keep(out, pred), nil
}

func (s *MemoryStore) CountTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) (int, error) {
	tasks, err := s.FindTasks(ctx, ownerID, pred)
	return len(tasks), err
}

func (s *MemoryStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return t, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return t, ErrorNotFound
	}
	t.CreatedAt = cur.CreatedAt
	s.tasks[t.ID] = cloneTask(t)
	return cloneTask(t), nil
}

func (s *MemoryStore) DeleteTasks(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && t.UserID == ownerID {
			delete(s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func creationOrder(a, b time.Time, idA, idB int64) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return cmp.Compare(idA, idB)
}

func cloneNote(n model.Note) model.Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

func cloneTask(t model.Task) model.Task {
	t.DueDate = clonePtr(t.DueDate)
	t.CompletedAt = clonePtr(t.CompletedAt)
	t.EstimatedTime = clonePtr(t.EstimatedTime)
	t.ActualTime = clonePtr(t.ActualTime)
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
