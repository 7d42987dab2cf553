package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/modules/tags"
)

// sortColumns whitelists the sortable fields; anything else falls back to
// created_at.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
	"title":      "title",
}

// TaskStorage is the postgres implementation of TaskStore. All reads exclude
// soft-deleted rows and every query is scoped by user id.
type TaskStorage struct {
	db *pgxpool.Pool
}

func NewTaskStorage(db *pgxpool.Pool) *TaskStorage {
	return &TaskStorage{db: db}
}

const taskColumns = `id, user_id, title, COALESCE(description, ''), status, priority,
	due_date, completed_at, created_at, updated_at`

func (s *TaskStorage) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Task, int, error) {
	where := []string{"user_id = $1", "NOT is_deleted"}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		where = append(where, fmt.Sprintf("id IN (SELECT task_id FROM task_tags WHERE tag_id = ANY($%d))", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	orderCol, ok := sortColumns[f.SortBy]
	if !ok {
		orderCol = "created_at"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}

	args = append(args, f.Offset, f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s %s OFFSET $%d LIMIT $%d`,
		taskColumns, whereClause, orderCol, direction, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	list := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read tasks: %w", err)
	}

	if err := s.attachTags(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *TaskStorage) Find(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND id = $2 AND NOT is_deleted`,
		userID, taskID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	single := []Task{*task}
	if err := s.attachTags(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

func (s *TaskStorage) Create(ctx context.Context, task *Task) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING created_at, updated_at`,
		task.ID, task.UserID, task.Title, task.Description, task.Status, task.Priority, task.DueDate,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, task *Task) error {
	err := s.db.QueryRow(ctx, `
		UPDATE tasks SET title = $3, description = NULLIF($4, ''), status = $5, priority = $6,
			due_date = $7, completed_at = $8, updated_at = now()
		WHERE user_id = $1 AND id = $2 AND NOT is_deleted
		RETURNING updated_at`,
		task.UserID, task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CompletedAt,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// ReplaceTags swaps the task's tag set. Tag ids that do not exist or belong
// to another user are silently dropped, mirroring the scoping of every other
// query. Returns the tags now attached.
func (s *TaskStorage) ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) ([]tags.Tag, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tasks WHERE user_id = $1 AND id = $2 AND NOT is_deleted)`,
		userID, taskID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check task: %w", err)
	}
	if !exists {
		return nil, ErrTaskNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return nil, fmt.Errorf("failed to clear task tags: %w", err)
	}
	if len(tagIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO task_tags (task_id, tag_id)
			SELECT $1, id FROM tags WHERE user_id = $2 AND id = ANY($3)`,
			taskID, userID, tagIDs); err != nil {
			return nil, fmt.Errorf("failed to attach tags: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit tag replacement: %w", err)
	}

	return s.tagsFor(ctx, taskID)
}

func (s *TaskStorage) SoftDelete(ctx context.Context, userID, taskID uuid.UUID) error {
	cmd, err := s.db.Exec(ctx,
		`UPDATE tasks SET is_deleted = TRUE, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND NOT is_deleted`,
		userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.DueDate, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	task.Tags = []tags.Tag{}
	return &task, nil
}

// attachTags loads the tags of every listed task in one query.
func (s *TaskStorage) attachTags(ctx context.Context, list []Task) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(list))
	index := make(map[uuid.UUID]*Task, len(list))
	for i := range list {
		ids = append(ids, list[i].ID)
		index[list[i].ID] = &list[i]
	}

	rows, err := s.db.Query(ctx, `
		SELECT tt.task_id, t.id, t.user_id, t.name, t.color, t.created_at
		FROM task_tags tt JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id = ANY($1)
		ORDER BY t.name ASC`, ids)
	if err != nil {
		return fmt.Errorf("failed to load task tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID uuid.UUID
		var tag tags.Tag
		if err := rows.Scan(&taskID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan task tag: %w", err)
		}
		if task, ok := index[taskID]; ok {
			task.Tags = append(task.Tags, tag)
		}
	}
	return rows.Err()
}

func (s *TaskStorage) tagsFor(ctx context.Context, taskID uuid.UUID) ([]tags.Tag, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.user_id, t.name, t.color, t.created_at
		FROM task_tags tt JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id = $1
		ORDER BY t.name ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	attached := make([]tags.Tag, 0)
	for rows.Next() {
		var tag tags.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		attached = append(attached, tag)
	}
	return attached, rows.Err()
}
