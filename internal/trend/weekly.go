package trend

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

const DefaultWeeks = 12

type WeekBucket struct {
	Week      string `json:"week"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// Weekly buckets the tasks created during the last weeks*7 days. Total counts
// by creation week, Completed by completion week. Buckets for every trailing
// week exist up front, most recent first, so quiet weeks report zeros. Two
// dates of the window can share a key; such weeks appear once.
func Weekly(tasks []model.Task, now time.Time, weeks int, loc *time.Location) []WeekBucket {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	loc = location(loc)
	local := now.In(loc)

	keys := make([]string, 0, weeks)
	seen := make(map[string]struct{}, weeks)
	for i := 0; i < weeks; i++ {
		key := WeekKey(local.AddDate(0, 0, -7*i), loc)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	start := local.AddDate(0, 0, -7*weeks)
	window := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.CreatedAt.Before(start) {
			window = append(window, t)
		}
	}

	// Проходы независимы: разные ключи, разные счётчики
	var completed, total map[string]int
	var g errgroup.Group
	g.Go(func() error {
		completed = countByWeek(window, loc, func(t model.Task) *time.Time {
			if t.Status != model.StatusDone {
				return nil
			}
			return t.CompletedAt
		})
		return nil
	})
	g.Go(func() error {
		total = countByWeek(window, loc, func(t model.Task) *time.Time { return &t.CreatedAt })
		return nil
	})
	_ = g.Wait()

	out := make([]WeekBucket, 0, len(keys))
	for _, key := range keys {
		out = append(out, WeekBucket{Week: key, Total: total[key], Completed: completed[key]})
	}
	return out
}

func countByWeek(tasks []model.Task, loc *time.Location, at func(model.Task) *time.Time) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		if ts := at(t); ts != nil {
			counts[WeekKey(*ts, loc)]++
		}
	}
	return counts
}
