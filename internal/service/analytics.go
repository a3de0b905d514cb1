package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/stats"
	"github.com/BuzzLyutic/study-analytics/internal/trend"
)

const dashboardWeeks = 5

type Dashboard struct {
	NoteStats      stats.NoteStats      `json:"note_stats"`
	TaskStats      stats.TaskStats      `json:"task_stats"`
	WeeklyTrend    []trend.WeekBucket   `json:"weekly_trend"`
	RecentActivity trend.RecentActivity `json:"recent_activity"`
}

// AnalyticsService builds the cross-entity reports: dashboard, streaks,
// heatmap, productivity and account usage.
type AnalyticsService struct {
	notes        repo.NoteRepository
	tasks        repo.TaskRepository
	storageLimit int64
	logger       *zap.Logger
	clock
}

func NewAnalyticsService(notes repo.NoteRepository, tasks repo.TaskRepository, storageLimit int64, logger *zap.Logger, loc *time.Location) *AnalyticsService {
	return &AnalyticsService{
		notes:        notes,
		tasks:        tasks,
		storageLimit: storageLimit,
		logger:       logger,
		clock:        newClock(loc),
	}
}

// snapshot loads all notes and tasks of the owner concurrently.
func (s *AnalyticsService) snapshot(ctx context.Context, owner int64) ([]model.Note, []model.Task, error) {
	var (
		notes []model.Note
		tasks []model.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notes, err = s.notes.FindNotes(gctx, owner, nil)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.FindTasks(gctx, owner, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, storeFailure(s.logger, "load analytics snapshot", owner, err)
	}
	return notes, tasks, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context, owner int64) (Dashboard, error) {
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now()
	d := Dashboard{
		NoteStats:      stats.Notes(notes, s.loc),
		TaskStats:      stats.Tasks(tasks, now),
		WeeklyTrend:    trend.Weekly(tasks, now, dashboardWeeks, s.loc),
		RecentActivity: trend.Recent(notes, tasks, now, s.loc),
	}
	s.logger.Debug("dashboard",
		zap.Int64("owner_id", owner),
		zap.Int("notes", len(notes)),
		zap.Int("tasks", len(tasks)),
	)
	return d, nil
}

func (s *AnalyticsService) RecentActivity(ctx context.Context, owner int64) (trend.RecentActivity, error) {
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return trend.RecentActivity{}, err
	}
	return trend.Recent(notes, tasks, s.now(), s.loc), nil
}

func (s *AnalyticsService) Streak(ctx context.Context, owner int64) (int, error) {
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return 0, err
	}
	return trend.Streak(notes, tasks, s.now(), s.loc), nil
}

// Heatmap counts activity per local day of year; year <= 0 means the current year.
func (s *AnalyticsService) Heatmap(ctx context.Context, owner int64, year int) (map[string]int, error) {
	if year <= 0 {
		year = s.now().In(s.loc).Year()
	}
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return trend.Heatmap(notes, tasks, year, s.loc), nil
}

func (s *AnalyticsService) Productivity(ctx context.Context, owner int64, days int) ([]trend.DayActivity, error) {
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return trend.Productivity(notes, tasks, s.now(), days, s.loc), nil
}

func (s *AnalyticsService) Account(ctx context.Context, owner int64) (stats.AccountStats, error) {
	notes, tasks, err := s.snapshot(ctx, owner)
	if err != nil {
		return stats.AccountStats{}, err
	}
	st := stats.Tasks(tasks, s.now())
	return stats.Account(notes, st.Total, st.Completed, s.storageLimit), nil
}
