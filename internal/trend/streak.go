package trend

import (
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

type RecentActivity struct {
	NotesThisWeek          int `json:"notes_this_week"`
	TasksCompletedThisWeek int `json:"tasks_completed_this_week"`
	StudyStreak            int `json:"study_streak"`
	TotalStudyTime         int `json:"total_study_time"`
}

// Streak counts consecutive local days with a note created or a task
// completed. The run must end today, or yesterday when today is still empty.
func Streak(notes []model.Note, tasks []model.Task, now time.Time, loc *time.Location) int {
	loc = location(loc)
	active := make(map[string]struct{})
	for _, n := range notes {
		active[DateKey(n.CreatedAt, loc)] = struct{}{}
	}
	for _, t := range tasks {
		if ts := completedAt(t); ts != nil {
			active[DateKey(*ts, loc)] = struct{}{}
		}
	}

	has := func(d time.Time) bool {
		_, ok := active[d.Format(dayLayout)]
		return ok
	}

	day := StartOfDay(now, loc)
	if !has(day) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for has(day) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Recent summarises the current Sunday-based local week. A done task without
// a completion stamp falls back to its update time.
func Recent(notes []model.Note, tasks []model.Task, now time.Time, loc *time.Location) RecentActivity {
	loc = location(loc)
	today := StartOfDay(now, loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	inWeek := func(ts time.Time) bool {
		return !ts.Before(weekStart) && ts.Before(weekEnd)
	}

	var out RecentActivity
	for _, n := range notes {
		if inWeek(n.CreatedAt) {
			out.NotesThisWeek++
		}
		out.TotalStudyTime += n.ReadingTime
	}
	for _, t := range tasks {
		if t.Status != model.StatusDone {
			continue
		}
		ts := t.UpdatedAt
		if t.CompletedAt != nil {
			ts = *t.CompletedAt
		}
		if inWeek(ts) {
			out.TasksCompletedThisWeek++
		}
	}
	out.StudyStreak = Streak(notes, tasks, now, loc)
	return out
}
