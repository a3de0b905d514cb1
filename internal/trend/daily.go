package trend

import (
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

const DefaultDays = 30

type DayActivity struct {
	Date  string `json:"date"`
	Notes int    `json:"notes"`
	Tasks int    `json:"tasks"`
	Words int    `json:"words"`
}

// Heatmap maps each date of year to notes created plus tasks completed that day.
func Heatmap(notes []model.Note, tasks []model.Task, year int, loc *time.Location) map[string]int {
	loc = location(loc)
	out := make(map[string]int)
	add := func(ts time.Time) {
		if ts.In(loc).Year() == year {
			out[DateKey(ts, loc)]++
		}
	}
	for _, n := range notes {
		add(n.CreatedAt)
	}
	for _, t := range tasks {
		if ts := completedAt(t); ts != nil {
			add(*ts)
		}
	}
	return out
}

// Productivity reports per-day activity from days calendar days ago up to
// today inclusive, oldest first. Every date in the window is present.
func Productivity(notes []model.Note, tasks []model.Task, now time.Time, days int, loc *time.Location) []DayActivity {
	if days <= 0 {
		days = DefaultDays
	}
	loc = location(loc)
	today := StartOfDay(now, loc)

	out := make([]DayActivity, 0, days+1)
	index := make(map[string]int, days+1)
	for d := today.AddDate(0, 0, -days); !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		index[key] = len(out)
		out = append(out, DayActivity{Date: key})
	}

	for _, n := range notes {
		if i, ok := index[DateKey(n.CreatedAt, loc)]; ok {
			out[i].Notes++
			out[i].Words += n.WordCount
		}
	}
	for _, t := range tasks {
		ts := completedAt(t)
		if ts == nil {
			continue
		}
		if i, ok := index[DateKey(*ts, loc)]; ok {
			out[i].Tasks++
		}
	}
	return out
}

func completedAt(t model.Task) *time.Time {
	if t.Status != model.StatusDone {
		return nil
	}
	return t.CompletedAt
}
