package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
)

const (
	noteColumns = `id, user_id, title, content, tags, is_public, word_count, reading_time, last_accessed, created_at, updated_at`
	taskColumns = `id, user_id, title, description, priority, status, due_date, completed_at, sort_order, category, estimated_time, actual_time, created_at, updated_at`
)

type PostgresStore struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close releases the pool.
func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresStore) CreateNote(ctx context.Context, n model.Note) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, content, tags, is_public, word_count, reading_time, last_accessed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+noteColumns,
		n.UserID, n.Title, n.Content, tagsArg(n.Tags), n.IsPublic, n.WordCount, n.ReadingTime, n.LastAccessed, n.CreatedAt, n.UpdatedAt,
	)
	created, err := scanNote(row)
	return created, mapError(err)
}

func (r *PostgresStore) GetNote(ctx context.Context, ownerID, id int64) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	n, err := scanNote(row)
	return n, mapError(err)
}

func (r *PostgresStore) FindNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, mapError(err)
		}
		if pred.Match(n) {
			notes = append(notes, n)
		}
	}
	return notes, mapError(rows.Err())
}

func (r *PostgresStore) CountNotes(ctx context.Context, ownerID int64, pred filter.Predicate[model.Note]) (int, error) {
	if pred == nil {
		var total int
		err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notes WHERE user_id = $1`, ownerID).Scan(&total)
		return total, mapError(err)
	}
	notes, err := r.FindNotes(ctx, ownerID, pred)
	return len(notes), err
}

func (r *PostgresStore) UpdateNote(ctx context.Context, n model.Note) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $3, content = $4, tags = $5, is_public = $6, word_count = $7,
			reading_time = $8, last_accessed = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		n.ID, n.UserID, n.Title, n.Content, tagsArg(n.Tags), n.IsPublic, n.WordCount, n.ReadingTime, n.LastAccessed, n.UpdatedAt,
	)
	updated, err := scanNote(row)
	return updated, mapError(err)
}

func (r *PostgresStore) TouchNote(ctx context.Context, ownerID, id int64, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notes SET last_accessed = $3 WHERE id = $1 AND user_id = $2`, id, ownerID, at)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *PostgresStore) DeleteNotes(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = ANY($2)`, ownerID, ids)
	if err != nil {
		return 0, mapError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *PostgresStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, priority, status, due_date, completed_at,
			sort_order, category, estimated_time, actual_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, string(t.Priority), string(t.Status), t.DueDate, t.CompletedAt,
		t.Order, t.Category, t.EstimatedTime, t.ActualTime, t.CreatedAt, t.UpdatedAt,
	)
	created, err := scanTask(row)
	return created, mapError(err)
}

func (r *PostgresStore) GetTask(ctx context.Context, ownerID, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *PostgresStore) FindTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, mapError(err)
		}
		if pred.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, mapError(rows.Err())
}

func (r *PostgresStore) CountTasks(ctx context.Context, ownerID int64, pred filter.Predicate[model.Task]) (int, error) {
	if pred == nil {
		var total int
		err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE user_id = $1`, ownerID).Scan(&total)
		return total, mapError(err)
	}
	tasks, err := r.FindTasks(ctx, ownerID, pred)
	return len(tasks), err
}

func (r *PostgresStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, status = $6, due_date = $7, completed_at = $8,
			sort_order = $9, category = $10, estimated_time = $11, actual_time = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		t.ID, t.UserID, t.Title, t.Description, string(t.Priority), string(t.Status), t.DueDate, t.CompletedAt,
		t.Order, t.Category, t.EstimatedTime, t.ActualTime, t.UpdatedAt,
	)
	updated, err := scanTask(row)
	return updated, mapError(err)
}

func (r *PostgresStore) DeleteTasks(ctx context.Context, ownerID int64, ids []int64) (int, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = ANY($2)`, ownerID, ids)
	if err != nil {
		return 0, mapError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.Tags, &n.IsPublic, &n.WordCount,
		&n.ReadingTime, &n.LastAccessed, &n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                model.Task
		priority, status string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &priority, &status, &t.DueDate, &t.CompletedAt,
		&t.Order, &t.Category, &t.EstimatedTime, &t.ActualTime, &t.CreatedAt, &t.UpdatedAt,
	)
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	return t, err
}

// NOT NULL column: nil slice is stored as an empty array.
func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: pg %s: %w", ErrStoreUnavailable, pgErr.Code, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
