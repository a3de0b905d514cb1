// Package search runs one query against notes and tasks at once and keeps a
// per-owner history of what was searched.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/query"
)

// MaxResults caps each entity kind in a search result.
const MaxResults = 50

type NoteFinder interface {
	FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error)
}

type TaskFinder interface {
	FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error)
}

type Result struct {
	Notes []model.Note `json:"notes"`
	Tasks []model.Task `json:"tasks"`
	Total int          `json:"total"`
}

type Composer struct {
	notes   NoteFinder
	tasks   TaskFinder
	history *History
	logger  *zap.Logger
	now     func() time.Time
}

// NewComposer wires the finders; history may be nil when nothing should be recorded.
func NewComposer(notes NoteFinder, tasks TaskFinder, history *History, logger *zap.Logger) *Composer {
	return &Composer{
		notes:   notes,
		tasks:   tasks,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Search matches q against note title/content and task title/description/category.
// Either sub-search failing fails the whole call; nothing is recorded then.
func (c *Composer) Search(ctx context.Context, owner int64, q string) (Result, error) {
	notePred, noteOrder, err := filter.NoteSearch(q)
	if err != nil {
		return Result{}, err
	}
	taskPred, taskOrder, err := filter.TaskSearch(q)
	if err != nil {
		return Result{}, err
	}

	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notes, err := c.notes.FindNotes(gctx, owner, notePred)
		if err != nil {
			return err
		}
		res.Notes = query.Limit(query.Run(notes, nil, noteOrder), MaxResults)
		return nil
	})
	g.Go(func() error {
		tasks, err := c.tasks.FindTasks(gctx, owner, taskPred)
		if err != nil {
			return err
		}
		res.Tasks = query.Limit(query.Run(tasks, nil, taskOrder), MaxResults)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("search failed", zap.Int64("owner_id", owner), zap.Error(err))
		return Result{}, err
	}

	res.Total = len(res.Notes) + len(res.Tasks)
	if c.history != nil {
		c.history.Record(owner, strings.TrimSpace(q), res.Total, c.now())
	}
	c.logger.Debug("search",
		zap.Int64("owner_id", owner),
		zap.Int("notes", len(res.Notes)),
		zap.Int("tasks", len(res.Tasks)),
	)
	return res, nil
}
