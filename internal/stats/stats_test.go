package stats

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/BuzzLyutic/study-analytics/internal/model"
)

func TestTagFrequency(t *testing.T) {
	notes := []model.Note{
		{Tags: []string{"go", "db"}},
		{Tags: []string{"db", "ui"}},
		{Tags: nil},
		{Tags: []string{"db", "go", "ops"}},
	}

	want := []TagCount{
		{Name: "db", Count: 3},
		{Name: "go", Count: 2},
		{Name: "ui", Count: 1},
		{Name: "ops", Count: 1},
	}
	if diff := cmp.Diff(want, TagFrequency(notes)); diff != "" {
		t.Errorf("TagFrequency mismatch (-want +got):\n%s", diff)
	}
}

func TestTagFrequency_Top50(t *testing.T) {
	notes := make([]model.Note, 0, 60)
	for i := 0; i < 60; i++ {
		notes = append(notes, model.Note{Tags: []string{fmt.Sprintf("t%02d", i)}})
	}
	got := TagFrequency(notes)
	assert.Len(t, got, 50)
	assert.Equal(t, "t00", got[0].Name)
}

func TestTagFrequency_PermutationStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tagGen := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"})
		notes := rapid.SliceOf(rapid.Custom(func(t *rapid.T) model.Note {
			return model.Note{Tags: rapid.SliceOfN(tagGen, 0, 3).Draw(t, "tags")}
		})).Draw(t, "notes")
		perm := rapid.Permutation(notes).Draw(t, "perm")

		toMap := func(counts []TagCount) map[string]int {
			m := make(map[string]int, len(counts))
			for _, c := range counts {
				m[c.Name] = c.Count
			}
			return m
		}
		if diff := cmp.Diff(toMap(TagFrequency(notes)), toMap(TagFrequency(perm))); diff != "" {
			t.Fatalf("counts changed under permutation:\n%s", diff)
		}
	})
}

func TestNotes(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	contents := []string{strings.Repeat("a", 1000), "b", "<p>" + strings.Repeat("c", 2400) + "</p>"}

	notes := make([]model.Note, 0, len(contents))
	for _, c := range contents {
		n := model.Note{CreatedAt: created}.WithContent(c)
		notes = append(notes, n)
	}

	got := Notes(notes, time.UTC)
	assert.Equal(t, 3, got.TotalNotes)
	assert.Equal(t, 3401, got.TotalWords)
	assert.Equal(t, 1134, got.AverageWordsPerNote)
	assert.Equal(t, []MonthCount{{Month: "2024-06", Count: 3}}, got.NotesByMonth)
}

func TestNotes_MonthsDescendingCappedAt12(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 14; m++ {
		notes = append(notes, model.Note{CreatedAt: time.Date(2023, time.Month(m), 10, 0, 0, 0, 0, time.UTC)})
	}
	got := Notes(notes, time.UTC)
	assert.Len(t, got.NotesByMonth, 12)
	assert.Equal(t, "2024-02", got.NotesByMonth[0].Month)
	assert.Equal(t, "2023-03", got.NotesByMonth[11].Month)
}

func TestNotes_LocalMonth(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	n := model.Note{CreatedAt: time.Date(2024, 6, 30, 20, 0, 0, 0, time.UTC)}
	got := Notes([]model.Note{n}, loc)
	assert.Equal(t, "2024-07", got.NotesByMonth[0].Month)
}

func TestNotes_Empty(t *testing.T) {
	got := Notes(nil, time.UTC)
	assert.Equal(t, 0, got.AverageWordsPerNote)
	assert.NotNil(t, got.NotesByMonth)
}

func TestTasks(t *testing.T) {
	due := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{Status: model.StatusPending, DueDate: &due, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Status: model.StatusPending, DueDate: &future},
		{Status: model.StatusPending},
		{Status: model.StatusDone, DueDate: &due},
	}

	assert.Equal(t, TaskStats{Total: 4, Completed: 1, Pending: 3, Overdue: 1}, Tasks(tasks, now))
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{5, 5, 100},
		{1, 3, 33},
		{2, 3, 67},
		{0, 7, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.completed, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.total))
		})
	}
}

func TestAccount(t *testing.T) {
	notes := []model.Note{{Content: "héllo"}, {Content: "abc"}}

	got := Account(notes, 101, 40, 100)
	assert.Equal(t, MemberPremium, got.MemberLevel)
	assert.Equal(t, int64(9), got.StorageUsedBytes)
	assert.Equal(t, 9, got.StoragePercentage)

	free := Account(nil, 0, 0, 0)
	assert.Equal(t, MemberFree, free.MemberLevel)
	assert.Equal(t, 0, free.StoragePercentage)
}
