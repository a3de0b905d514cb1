package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/query"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/stats"
)

type NoteService struct {
	repo   repo.NoteRepository
	logger *zap.Logger
	clock
}

func NewNoteService(repo repo.NoteRepository, logger *zap.Logger, loc *time.Location) *NoteService {
	return &NoteService{repo: repo, logger: logger, clock: newClock(loc)}
}

// List returns every matching note of the owner, ordered as f asks.
func (s *NoteService) List(ctx context.Context, owner int64, f model.NoteFilter) ([]model.Note, error) {
	pred, order, err := filter.Notes(f, s.loc)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.FindNotes(ctx, owner, pred)
	if err != nil {
		return nil, storeFailure(s.logger, "list notes", owner, err)
	}
	return query.Run(notes, nil, order), nil
}

func (s *NoteService) Page(ctx context.Context, owner int64, f model.NoteFilter) (query.Page[model.Note], error) {
	notes, err := s.List(ctx, owner, f)
	if err != nil {
		return query.Page[model.Note]{}, err
	}
	return query.Paginate(notes, f.Page, f.Limit), nil
}

// Get returns the note and records the access time.
func (s *NoteService) Get(ctx context.Context, owner, id int64) (model.Note, error) {
	n, err := s.repo.GetNote(ctx, owner, id)
	if err != nil {
		return n, storeFailure(s.logger, "get note", owner, err)
	}
	at := s.now()
	if err := s.repo.TouchNote(ctx, owner, id, at); err != nil {
		return n, storeFailure(s.logger, "touch note", owner, err)
	}
	n.LastAccessed = at
	return n, nil
}

func (s *NoteService) Create(ctx context.Context, owner int64, in model.NoteInput) (model.Note, error) {
	tags := normalizeTags(in.Tags)
	if err := s.validate(in.Title, in.Content, tags); err != nil { // Валидация входных данных
		return model.Note{}, err
	}

	now := s.now()
	n := model.Note{
		UserID:       owner,
		Title:        strings.TrimSpace(in.Title),
		Tags:         tags,
		IsPublic:     in.IsPublic,
		LastAccessed: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}.WithContent(in.Content)

	created, err := s.repo.CreateNote(ctx, n)
	return created, storeFailure(s.logger, "create note", owner, err)
}

// Update applies the non-nil fields of upd. Word count and reading time are
// recomputed only when the content changes.
func (s *NoteService) Update(ctx context.Context, owner, id int64, upd model.NoteUpdate) (model.Note, error) {
	n, err := s.repo.GetNote(ctx, owner, id)
	if err != nil {
		return n, storeFailure(s.logger, "get note", owner, err)
	}

	if upd.Title != nil {
		n.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Tags != nil {
		n.Tags = normalizeTags(*upd.Tags)
	}
	if upd.IsPublic != nil {
		n.IsPublic = *upd.IsPublic
	}
	if upd.Content != nil {
		n = n.WithContent(*upd.Content)
	}
	if err := s.validate(n.Title, n.Content, n.Tags); err != nil {
		return n, err
	}
	n.UpdatedAt = s.now()

	updated, err := s.repo.UpdateNote(ctx, n)
	return updated, storeFailure(s.logger, "update note", owner, err)
}

func (s *NoteService) Delete(ctx context.Context, owner, id int64) error {
	deleted, err := s.repo.DeleteNotes(ctx, owner, []int64{id})
	if err != nil {
		return storeFailure(s.logger, "delete note", owner, err)
	}
	if deleted == 0 {
		return repo.ErrorNotFound
	}
	return nil
}

// DeleteMany removes the owner's notes among ids and reports how many went.
func (s *NoteService) DeleteMany(ctx context.Context, owner int64, ids []int64) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteNotes(ctx, owner, ids)
	return deleted, storeFailure(s.logger, "delete notes", owner, err)
}

func (s *NoteService) Search(ctx context.Context, owner int64, q string) ([]model.Note, error) {
	pred, order, err := filter.NoteSearch(q)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.FindNotes(ctx, owner, pred)
	if err != nil {
		return nil, storeFailure(s.logger, "search notes", owner, err)
	}
	return query.Limit(query.Run(notes, nil, order), searchLimit), nil
}

func (s *NoteService) Tags(ctx context.Context, owner int64) ([]stats.TagCount, error) {
	notes, err := s.repo.FindNotes(ctx, owner, nil)
	if err != nil {
		return nil, storeFailure(s.logger, "list tags", owner, err)
	}
	return stats.TagFrequency(notes), nil
}

func (s *NoteService) Stats(ctx context.Context, owner int64) (stats.NoteStats, error) {
	notes, err := s.repo.FindNotes(ctx, owner, nil)
	if err != nil {
		return stats.NoteStats{}, storeFailure(s.logger, "note stats", owner, err)
	}
	st := stats.Notes(notes, s.loc)
	s.logger.Debug("note stats", zap.Int64("owner_id", owner), zap.Int("notes", st.TotalNotes))
	return st, nil
}

func (s *NoteService) validate(title, content string, tags []string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return validationError("content is required")
	}
	return validateTags(tags)
}
