package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

// MockNoteRepository - мок репозитория заметок
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) CreateNote(ctx context.Context, n model.Note) (model.Note, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) GetNote(ctx context.Context, ownerID, id int64) (model.Note, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error) {
	args := m.Called(ctx, ownerID, pred)
	notes, _ := args.Get(0).([]model.Note)
	return notes, args.Error(1)
}

func (m *MockNoteRepository) CountNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) (int, error) {
	args := m.Called(ctx, ownerID, pred)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) UpdateNote(ctx context.Context, n model.Note) (model.Note, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) TouchNote(ctx context.Context, ownerID, id int64, at time.Time) error {
	args := m.Called(ctx, ownerID, id, at)
	return args.Error(0)
}

func (m *MockNoteRepository) DeleteNotes(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Int(0), args.Error(1)
}

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, ownerID, id int64) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, pred)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) CountTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) (int, error) {
	args := m.Called(ctx, ownerID, pred)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteTasks(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2024, 6, 19, 15, 30, 0, 0, time.UTC)

func fixedClock() clock {
	return clock{now: func() time.Time { return fixedNow }, loc: time.UTC}
}
