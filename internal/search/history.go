package search

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

const (
	DefaultHistorySize = 20
	DefaultPopular     = 5
)

type Entry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Results   int       `json:"results"`
}

// History keeps the latest distinct queries per owner, most recent first.
// It also counts how often each retained query was run.
type History struct {
	mu      sync.RWMutex
	size    int
	entries map[int64][]Entry
	counts  map[int64]map[string]int
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		entries: make(map[int64][]Entry),
		counts:  make(map[int64]map[string]int),
	}
}

// Record moves q to the front of the owner's history.
func (h *History) Record(owner int64, q string, results int, at time.Time) {
	if q == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := slices.DeleteFunc(h.entries[owner], func(e Entry) bool { return e.Query == q })
	entries = slices.Insert(entries, 0, Entry{Query: q, Timestamp: at, Results: results})
	if len(entries) > h.size {
		for _, dropped := range entries[h.size:] {
			delete(h.counts[owner], dropped.Query)
		}
		entries = entries[:h.size]
	}
	h.entries[owner] = entries

	if h.counts[owner] == nil {
		h.counts[owner] = make(map[string]int)
	}
	h.counts[owner][q]++
}

func (h *History) List(owner int64) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Entry{}, h.entries[owner]...)
}

func (h *History) Remove(owner int64, q string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[owner] = slices.DeleteFunc(h.entries[owner], func(e Entry) bool { return e.Query == q })
	delete(h.counts[owner], q)
}

func (h *History) Clear(owner int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entries, owner)
	delete(h.counts, owner)
}

type popularity struct {
	query string
	count int
	pos   int
}

// Popular returns up to limit queries by run count, ties broken by recency.
func (h *History) Popular(owner int64, limit int) []string {
	if limit <= 0 {
		limit = DefaultPopular
	}
	h.mu.RLock()
	ranked := make([]popularity, 0, len(h.entries[owner]))
	for i, e := range h.entries[owner] {
		ranked = append(ranked, popularity{query: e.Query, count: h.counts[owner][e.Query], pos: i})
	}
	h.mu.RUnlock()

	slices.SortFunc(ranked, func(a, b popularity) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked[:min(limit, len(ranked))] {
		out = append(out, r.query)
	}
	return out
}
