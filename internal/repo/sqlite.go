package repo

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

//go:embed sqlite_schema.sql
var schemaFS embed.FS

// SQLiteStore persists notes and tasks in a single SQLite file.
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	// ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	schemaSQL, err := schemaFS.ReadFile("sqlite_schema.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrStoreUnavailable, err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateNote(ctx context.Context, n model.Note) (model.Note, error) {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return n, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (user_id, title, content, tags, is_public, word_count, reading_time, last_accessed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Title, n.Content, tags, n.IsPublic, n.WordCount, n.ReadingTime,
		n.LastAccessed.UnixNano(), n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano())
	if err != nil {
		return n, sqliteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return n, sqliteError(err)
	}
	return s.GetNote(ctx, n.UserID, id)
}

func (s *SQLiteStore) GetNote(ctx context.Context, ownerID, id int64) (model.Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, ownerID)
	n, err := scanSQLiteNote(row)
	return n, sqliteError(err)
}

func (s *SQLiteStore) FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, sqliteError(err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanSQLiteNote(rows)
		if err != nil {
			return nil, sqliteError(err)
		}
		if pred.Match(n) {
			notes = append(notes, n)
		}
	}
	return notes, sqliteError(rows.Err())
}

func (s *SQLiteStore) CountNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) (int, error) {
	if pred == nil {
		var total int
		err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM notes WHERE user_id = ?`, ownerID).Scan(&total)
		return total, sqliteError(err)
	}
	notes, err := s.FindNotes(ctx, ownerID, pred)
	return len(notes), err
}

func (s *SQLiteStore) UpdateNote(ctx context.Context, n model.Note) (model.Note, error) {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return n, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, tags = ?, is_public = ?, word_count = ?, reading_time = ?,
			last_accessed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, n.Title, n.Content, tags, n.IsPublic, n.WordCount, n.ReadingTime,
		n.LastAccessed.UnixNano(), n.UpdatedAt.UnixNano(), n.ID, n.UserID)
	if err := affectedOne(res, err); err != nil {
		return n, err
	}
	return s.GetNote(ctx, n.UserID, n.ID)
}

func (s *SQLiteStore) TouchNote(ctx context.Context, ownerID, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET last_accessed = ? WHERE id = ? AND user_id = ?`, at.UnixNano(), id, ownerID)
	return affectedOne(res, err)
}

func (s *SQLiteStore) DeleteNotes(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	return s.deleteIn(ctx, "notes", ownerID, ids)
}

func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, description, priority, status, due_date, completed_at,
			sort_order, category, estimated_time, actual_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.UserID, t.Title, t.Description, string(t.Priority), string(t.Status), nanosArg(t.DueDate), nanosArg(t.CompletedAt),
		t.Order, t.Category, intArg(t.EstimatedTime), intArg(t.ActualTime), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano())
	if err != nil {
		return t, sqliteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return t, sqliteError(err)
	}
	return s.GetTask(ctx, t.UserID, id)
}

func (s *SQLiteStore) GetTask(ctx context.Context, ownerID, id int64) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	t, err := scanSQLiteTask(row)
	return t, sqliteError(err)
}

func (s *SQLiteStore) FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, sqliteError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, sqliteError(err)
		}
		if pred.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, sqliteError(rows.Err())
}

func (s *SQLiteStore) CountTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) (int, error) {
	if pred == nil {
		var total int
		err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM tasks WHERE user_id = ?`, ownerID).Scan(&total)
		return total, sqliteError(err)
	}
	tasks, err := s.FindTasks(ctx, ownerID, pred)
	return len(tasks), err
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, status = ?, due_date = ?, completed_at = ?,
			sort_order = ?, category = ?, estimated_time = ?, actual_time = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, t.Title, t.Description, string(t.Priority), string(t.Status), nanosArg(t.DueDate), nanosArg(t.CompletedAt),
		t.Order, t.Category, intArg(t.EstimatedTime), intArg(t.ActualTime), t.UpdatedAt.UnixNano(), t.ID, t.UserID)
	if err := affectedOne(res, err); err != nil {
		return t, err
	}
	return s.GetTask(ctx, t.UserID, t.ID)
}

func (s *SQLiteStore) DeleteTasks(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	return s.deleteIn(ctx, "tasks", ownerID, ids)
}

func (s *SQLiteStore) deleteIn(ctx context.Context, table string, ownerID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, sqliteError(err)
	}
	n, err := res.RowsAffected()
	return int(n), sqliteError(err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteNote(row scanner) (model.Note, error) {
	var (
		n                          model.Note
		tags                       string
		accessed, created, updated int64
	)
	if err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &tags, &n.IsPublic, &n.WordCount,
		&n.ReadingTime, &accessed, &created, &updated,
	); err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return n, fmt.Errorf("decode tags of note %d: %w", n.ID, err)
	}
	n.LastAccessed = time.Unix(0, accessed)
	n.CreatedAt = time.Unix(0, created)
	n.UpdatedAt = time.Unix(0, updated)
	return n, nil
}

func scanSQLiteTask(row scanner) (model.Task, error) {
	var (
		t                 model.Task
		priority, status  string
		due, completed    sql.NullInt64
		estimated, actual sql.NullInt64
		created, updated  int64
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &priority, &status, &due, &completed,
		&t.Order, &t.Category, &estimated, &actual, &created, &updated,
	); err != nil {
		return t, err
	}
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	t.DueDate = nanosValue(due)
	t.CompletedAt = nanosValue(completed)
	t.EstimatedTime = intValue(estimated)
	t.ActualTime = intValue(actual)
	t.CreatedAt = time.Unix(0, created)
	t.UpdatedAt = time.Unix(0, updated)
	return t, nil
}

func encodeTags(tags []string) (string, error) {
	raw, err := json.Marshal(tagsArg(tags))
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

func nanosArg(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func nanosValue(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}

func intArg(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intValue(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return sqliteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sqliteError(err)
	}
	if n == 0 {
		return ErrorNotFound
	}
	return nil
}

func sqliteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrorNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrorNotFound):
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
