package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/notify"
	"github.com/BuzzLyutic/study-analytics/internal/query"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/stats"
	"github.com/BuzzLyutic/study-analytics/internal/trend"
)

// Notifier receives in-app notifications; *notify.Center implements it.
type Notifier interface {
	Add(n notify.Notification) notify.Notification
}

type TaskService struct {
	repo     repo.TaskRepository
	notifier Notifier
	logger   *zap.Logger
	clock
}

// NewTaskService builds the service; notifier may be nil.
func NewTaskService(repo repo.TaskRepository, notifier Notifier, logger *zap.Logger, loc *time.Location) *TaskService {
	return &TaskService{repo: repo, notifier: notifier, logger: logger, clock: newClock(loc)}
}

func (s *TaskService) List(ctx context.Context, owner int64, f model.TaskFilter) ([]model.Task, error) {
	pred, order, err := filter.Tasks(f, s.loc)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.FindTasks(ctx, owner, pred)
	if err != nil {
		return nil, storeFailure(s.logger, "list tasks", owner, err)
	}
	return query.Run(tasks, nil, order), nil
}

func (s *TaskService) Page(ctx context.Context, owner int64, f model.TaskFilter) (query.Page[model.Task], error) {
	tasks, err := s.List(ctx, owner, f)
	if err != nil {
		return query.Page[model.Task]{}, err
	}
	return query.Paginate(tasks, f.Page, f.Limit), nil
}

func (s *TaskService) Get(ctx context.Context, owner, id int64) (model.Task, error) {
	t, err := s.repo.GetTask(ctx, owner, id)
	return t, storeFailure(s.logger, "get task", owner, err)
}

func (s *TaskService) Create(ctx context.Context, owner int64, in model.TaskInput) (model.Task, error) {
	now := s.now()
	t := model.Task{
		UserID:        owner,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Priority:      cmp.Or(in.Priority, model.PriorityMedium),
		Status:        model.StatusPending,
		DueDate:       in.DueDate,
		Category:      cmp.Or(strings.TrimSpace(in.Category), model.DefaultCategory),
		EstimatedTime: in.EstimatedTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	status := cmp.Or(in.Status, model.StatusPending)
	if err := s.validate(t, status); err != nil {
		return t, err
	}
	t = t.WithStatus(status, now)

	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return created, storeFailure(s.logger, "create task", owner, err)
	}
	if created.Status == model.StatusDone {
		s.completed(created)
	}
	return created, nil
}

// Update applies the non-nil fields of upd. Status changes go through
// Task.WithStatus so CompletedAt stays consistent.
func (s *TaskService) Update(ctx context.Context, owner, id int64, upd model.TaskUpdate) (model.Task, error) {
	cur, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		return cur, storeFailure(s.logger, "get task", owner, err)
	}

	t := cur
	if upd.Title != nil {
		t.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		t.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Category != nil {
		t.Category = cmp.Or(strings.TrimSpace(*upd.Category), model.DefaultCategory)
	}
	switch {
	case upd.ClearDueDate:
		t.DueDate = nil
	case upd.DueDate != nil:
		due := *upd.DueDate
		t.DueDate = &due
	}
	if upd.EstimatedTime != nil {
		t.EstimatedTime = upd.EstimatedTime
	}
	if upd.ActualTime != nil {
		t.ActualTime = upd.ActualTime
	}
	status := t.Status
	if upd.Status != nil {
		status = *upd.Status
	}
	if err := s.validate(t, status); err != nil {
		return cur, err
	}

	now := s.now()
	t = t.WithStatus(status, now)
	t.UpdatedAt = now
	return s.save(ctx, cur, t)
}

func (s *TaskService) UpdateStatus(ctx context.Context, owner, id int64, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return model.Task{}, validationError("unknown status %q", status)
	}
	cur, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		return cur, storeFailure(s.logger, "get task", owner, err)
	}
	now := s.now()
	t := cur.WithStatus(status, now)
	t.UpdatedAt = now
	return s.save(ctx, cur, t)
}

// UpdateStatuses moves the owner's tasks among ids to status and returns how
// many were written. Each task goes through WithStatus like a single update.
// On a failed save the count covers the tasks already written.
func (s *TaskService) UpdateStatuses(ctx context.Context, owner int64, ids []int64, status model.Status) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	if !status.Valid() {
		return 0, validationError("unknown status %q", status)
	}

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	tasks, err := s.repo.FindTasks(ctx, owner, func(t model.Task) bool {
		_, ok := wanted[t.ID]
		return ok
	})
	if err != nil {
		return 0, storeFailure(s.logger, "find tasks", owner, err)
	}

	now := s.now()
	for i, cur := range tasks {
		t := cur.WithStatus(status, now)
		t.UpdatedAt = now
		if _, err := s.save(ctx, cur, t); err != nil {
			return i, err
		}
	}
	return len(tasks), nil
}

// Reorder sets the manual position of each listed task. Unknown ids are skipped.
func (s *TaskService) Reorder(ctx context.Context, owner int64, orders []model.TaskOrder) error {
	if len(orders) == 0 {
		return validationError("task orders must not be empty")
	}
	now := s.now()
	for _, o := range orders {
		t, err := s.repo.GetTask(ctx, owner, o.ID)
		if errors.Is(err, repo.ErrorNotFound) {
			continue
		}
		if err != nil {
			return storeFailure(s.logger, "get task", owner, err)
		}
		t.Order = o.Order
		t.UpdatedAt = now
		if _, err := s.repo.UpdateTask(ctx, t); err != nil {
			return storeFailure(s.logger, "reorder task", owner, err)
		}
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id int64) error {
	deleted, err := s.repo.DeleteTasks(ctx, owner, []int64{id})
	if err != nil {
		return storeFailure(s.logger, "delete task", owner, err)
	}
	if deleted == 0 {
		return repo.ErrorNotFound
	}
	return nil
}

func (s *TaskService) DeleteMany(ctx context.Context, owner int64, ids []int64) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteTasks(ctx, owner, ids)
	return deleted, storeFailure(s.logger, "delete tasks", owner, err)
}

// Today returns tasks due on the local day containing day, highest priority
// first and newest first within a priority. A zero day means today.
func (s *TaskService) Today(ctx context.Context, owner int64, day time.Time) ([]model.Task, error) {
	if day.IsZero() {
		day = s.now()
	}
	start, end := filter.DayBounds(day, s.loc)
	tasks, err := s.repo.FindTasks(ctx, owner, filter.DueBetween(start, end))
	if err != nil {
		return nil, storeFailure(s.logger, "today tasks", owner, err)
	}
	return query.Run(tasks, nil, func(a, b model.Task) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

// Overdue returns pending tasks past their due date, earliest due first.
func (s *TaskService) Overdue(ctx context.Context, owner int64) ([]model.Task, error) {
	tasks, err := s.repo.FindTasks(ctx, owner, filter.Overdue(s.now()))
	if err != nil {
		return nil, storeFailure(s.logger, "overdue tasks", owner, err)
	}
	order, _ := filter.TaskOrder("due_date", "asc")
	return query.Run(tasks, nil, order), nil
}

func (s *TaskService) Search(ctx context.Context, owner int64, q string) ([]model.Task, error) {
	pred, order, err := filter.TaskSearch(q)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.FindTasks(ctx, owner, pred)
	if err != nil {
		return nil, storeFailure(s.logger, "search tasks", owner, err)
	}
	return query.Limit(query.Run(tasks, nil, order), searchLimit), nil
}

func (s *TaskService) Stats(ctx context.Context, owner int64) (stats.TaskStats, error) {
	tasks, err := s.repo.FindTasks(ctx, owner, nil)
	if err != nil {
		return stats.TaskStats{}, storeFailure(s.logger, "task stats", owner, err)
	}
	return stats.Tasks(tasks, s.now()), nil
}

// Weekly returns the trailing weekly buckets; weeks <= 0 means trend.DefaultWeeks.
func (s *TaskService) Weekly(ctx context.Context, owner int64, weeks int) ([]trend.WeekBucket, error) {
	tasks, err := s.repo.FindTasks(ctx, owner, nil)
	if err != nil {
		return nil, storeFailure(s.logger, "weekly stats", owner, err)
	}
	buckets := trend.Weekly(tasks, s.now(), weeks, s.loc)
	s.logger.Debug("weekly stats", zap.Int64("owner_id", owner), zap.Int("buckets", len(buckets)))
	return buckets, nil
}

// CompletionRate is the rounded percentage of done tasks among those created
// within [start, end]. Empty bounds are open.
func (s *TaskService) CompletionRate(ctx context.Context, owner int64, start, end string) (int, error) {
	from, err := filter.ParseBound(start, s.loc, false)
	if err != nil {
		return 0, err
	}
	to, err := filter.ParseBound(end, s.loc, true)
	if err != nil {
		return 0, err
	}
	tasks, err := s.repo.FindTasks(ctx, owner, filter.Range(from, to, func(t model.Task) *time.Time { return &t.CreatedAt }))
	if err != nil {
		return 0, storeFailure(s.logger, "completion rate", owner, err)
	}
	st := stats.Tasks(tasks, s.now())
	return stats.CompletionRate(st.Completed, st.Total), nil
}

func (s *TaskService) save(ctx context.Context, cur, t model.Task) (model.Task, error) {
	updated, err := s.repo.UpdateTask(ctx, t)
	if err != nil {
		return updated, storeFailure(s.logger, "update task", t.UserID, err)
	}
	if cur.Status == model.StatusPending && updated.Status == model.StatusDone {
		s.completed(updated)
	}
	return updated, nil
}

func (s *TaskService) completed(t model.Task) {
	if s.notifier == nil {
		return
	}
	s.notifier.Add(notify.Notification{
		OwnerID:    t.UserID,
		Title:      "Task completed",
		Message:    fmt.Sprintf("Task %q is done", t.Title),
		Kind:       notify.KindSuccess,
		ActionURL:  "/tasks",
		ActionText: "View tasks",
	})
}

func (s *TaskService) validate(t model.Task, status model.Status) error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return validationError("description must be at most %d characters", maxDescriptionLen)
	}
	if utf8.RuneCountInString(t.Category) > maxCategoryLen {
		return validationError("category must be at most %d characters", maxCategoryLen)
	}
	if !t.Priority.Valid() {
		return validationError("unknown priority %q", t.Priority)
	}
	if !status.Valid() {
		return validationError("unknown status %q", status)
	}
	if t.EstimatedTime != nil && *t.EstimatedTime < 0 {
		return validationError("estimated time must not be negative")
	}
	if t.ActualTime != nil && *t.ActualTime < 0 {
		return validationError("actual time must not be negative")
	}
	return nil
}
