// Package stats reduces owner-scoped note and task collections to counts and
// derived scalars. Every function is a pure reduction.
package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

const (
	maxTags   = 50
	maxMonths = 12
)

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type NoteStats struct {
	TotalNotes          int          `json:"total_notes"`
	TotalWords          int          `json:"total_words"`
	AverageWordsPerNote int          `json:"average_words_per_note"`
	NotesByMonth        []MonthCount `json:"notes_by_month"`
}

type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// TagFrequency counts tag occurrences across notes, highest count first,
// ties kept in first-seen order, at most 50 entries.
func TagFrequency(notes []model.Note) []TagCount {
	index := make(map[string]int)
	counts := make([]TagCount, 0)
	for _, n := range notes {
		for _, tag := range n.Tags {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Name: tag, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b TagCount) int { return cmp.Compare(b.Count, a.Count) })
	if len(counts) > maxTags {
		counts = counts[:maxTags]
	}
	return counts
}

// Notes summarises word counts and groups notes by the local month they were created in.
func Notes(notes []model.Note, loc *time.Location) NoteStats {
	if loc == nil {
		loc = time.Local
	}

	st := NoteStats{TotalNotes: len(notes), NotesByMonth: []MonthCount{}}
	byMonth := make(map[string]int)
	for _, n := range notes {
		st.TotalWords += n.WordCount
		byMonth[MonthKey(n.CreatedAt, loc)]++
	}
	st.AverageWordsPerNote = RoundRatio(st.TotalWords, st.TotalNotes, 1)

	for month, count := range byMonth {
		st.NotesByMonth = append(st.NotesByMonth, MonthCount{Month: month, Count: count})
	}
	slices.SortFunc(st.NotesByMonth, func(a, b MonthCount) int { return cmp.Compare(b.Month, a.Month) })
	if len(st.NotesByMonth) > maxMonths {
		st.NotesByMonth = st.NotesByMonth[:maxMonths]
	}
	return st
}

// Tasks counts tasks by status. Overdue is evaluated against now.
func Tasks(tasks []model.Task, now time.Time) TaskStats {
	st := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusDone:
			st.Completed++
		case model.StatusPending:
			st.Pending++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
	}
	return st
}

// CompletionRate is round(completed/total*100), 0 when there are no tasks.
func CompletionRate(completed, total int) int {
	return RoundRatio(completed, total, 100)
}

// RoundRatio returns round(n/d*scale), or 0 when d is not positive.
func RoundRatio(n, d, scale int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * float64(scale)))
}

func MonthKey(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%04d-%02d", local.Year(), int(local.Month()))
}
