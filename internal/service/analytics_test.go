package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/stats"
	"github.com/BuzzLyutic/study-analytics/internal/trend"
)

func seedAnalytics(t *testing.T, store *repo.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	noteDays := []time.Time{
		time.Date(2024, 6, 19, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 18, 8, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC),
	}
	for i, at := range noteDays {
		_, err := store.CreateNote(ctx, model.Note{
			UserID: 1, Title: fmt.Sprintf("n%d", i), CreatedAt: at, UpdatedAt: at, LastAccessed: at,
		}.WithContent("hello"))
		require.NoError(t, err)
	}

	completed := time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC)
	est := 30
	_, err := store.CreateTask(ctx, model.Task{
		UserID: 1, Title: "done", Priority: model.PriorityLow, Status: model.StatusDone,
		CompletedAt: &completed, ActualTime: &est,
		CreatedAt: completed.Add(-time.Hour), UpdatedAt: completed,
	})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, model.Task{
		UserID: 1, Title: "open", Priority: model.PriorityHigh, Status: model.StatusPending,
		CreatedAt: completed, UpdatedAt: completed,
	})
	require.NoError(t, err)
}

func newAnalytics(store *repo.MemoryStore) *AnalyticsService {
	s := NewAnalyticsService(store, store, 100*1024*1024, zap.NewNop(), time.UTC)
	s.clock = fixedClock()
	return s
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	store := repo.NewMemoryStore()
	seedAnalytics(t, store)

	d, err := newAnalytics(store).Dashboard(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, d.NoteStats.TotalNotes)
	assert.Equal(t, 15, d.NoteStats.TotalWords)
	assert.Equal(t, 2, d.TaskStats.Total)
	assert.Equal(t, 1, d.TaskStats.Completed)
	// 19.06 и 22.05 дают один ключ W03, неделя появляется один раз
	assert.Equal(t, []trend.WeekBucket{
		{Week: "2024-W03", Total: 2, Completed: 1},
		{Week: "2024-W02"},
		{Week: "2024-W01"},
		{Week: "2024-W04"},
	}, d.WeeklyTrend)
	assert.Equal(t, 3, d.RecentActivity.StudyStreak)
}

func TestAnalyticsService_DashboardDistinctWeeks(t *testing.T) {
	s := newAnalytics(repo.NewMemoryStore())
	now := time.Date(2024, 10, 26, 12, 0, 0, 0, time.UTC)
	s.clock = clock{now: func() time.Time { return now }, loc: time.UTC}

	d, err := s.Dashboard(context.Background(), 1)
	require.NoError(t, err)

	weeks := make([]string, 0, len(d.WeeklyTrend))
	for _, b := range d.WeeklyTrend {
		weeks = append(weeks, b.Week)
		assert.Zero(t, b.Total)
		assert.Zero(t, b.Completed)
	}
	assert.Equal(t, []string{"2024-W03", "2024-W02", "2024-W01", "2024-W00", "2024-W04"}, weeks)
	assert.Zero(t, d.RecentActivity.StudyStreak)
}

func TestAnalyticsService_Reports(t *testing.T) {
	store := repo.NewMemoryStore()
	seedAnalytics(t, store)
	s := newAnalytics(store)
	ctx := context.Background()

	streak, err := s.Streak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	heat, err := s.Heatmap(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, heat["2024-06-19"])
	assert.NotContains(t, heat, "2023-12-31")

	heat, err = s.Heatmap(ctx, 1, 2023)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2023-12-31": 1}, heat)

	days, err := s.Productivity(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, days, 8)
	assert.Equal(t, "2024-06-19", days[len(days)-1].Date)

	account, err := s.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stats.MemberFree, account.MemberLevel)
	assert.Equal(t, int64(15), account.StorageUsedBytes)
	assert.Equal(t, 2, account.TotalTasks)
	assert.Equal(t, 1, account.CompletedTasks)

	recent, err := s.RecentActivity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, recent.NotesThisWeek)
	assert.Equal(t, 1, recent.TasksCompletedThisWeek)
}

func TestAnalyticsService_StoreFailure(t *testing.T) {
	storeErr := fmt.Errorf("%w: pool closed", repo.ErrStoreUnavailable)
	notes := new(MockNoteRepository)
	tasks := new(MockTaskRepository)
	notes.On("FindNotes", mock.Anything, int64(1), mock.Anything).Return(nil, storeErr)
	tasks.On("FindTasks", mock.Anything, int64(1), mock.Anything).Return([]model.Task{}, nil).Maybe()

	s := NewAnalyticsService(notes, tasks, 0, zap.NewNop(), time.UTC)
	_, err := s.Dashboard(context.Background(), 1)
	assert.ErrorIs(t, err, repo.ErrStoreUnavailable)
}
