package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/pkg/pg"
)

// TagStorage is the postgres implementation of TagStore. Every query is
// scoped by user id; a tag id belonging to another user reads as not found.
type TagStorage struct {
	db *pgxpool.Pool
}

func NewTagStorage(db *pgxpool.Pool) *TagStorage {
	return &TagStorage{db: db}
}

const tagColumns = `t.id, t.user_id, t.name, t.color, t.created_at,
	(SELECT COUNT(*) FROM task_tags tt JOIN tasks ts ON ts.id = tt.task_id
	 WHERE tt.tag_id = t.id AND NOT ts.is_deleted)`

func (s *TagStorage) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Tag, int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.user_id = $1
		 ORDER BY t.name ASC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	list := make([]Tag, 0)
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.TaskCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan tag: %w", err)
		}
		list = append(list, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read tags: %w", err)
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tags WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return list, total, nil
}

func (s *TagStorage) Find(ctx context.Context, userID, tagID uuid.UUID) (*Tag, error) {
	var tag Tag
	err := s.db.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.user_id = $1 AND t.id = $2`,
		userID, tagID,
	).Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.TaskCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return &tag, nil
}

func (s *TagStorage) Create(ctx context.Context, tag *Tag) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO tags (id, user_id, name, color) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		tag.ID, tag.UserID, tag.Name, tag.Color,
	).Scan(&tag.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (s *TagStorage) Update(ctx context.Context, tag *Tag) error {
	cmd, err := s.db.Exec(ctx,
		`UPDATE tags SET name = $3, color = $4 WHERE user_id = $1 AND id = $2`,
		tag.UserID, tag.ID, tag.Name, tag.Color)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

// Delete removes the tag and its task associations in one transaction.
func (s *TagStorage) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM task_tags WHERE tag_id IN (SELECT id FROM tags WHERE user_id = $1 AND id = $2)`,
		userID, tagID); err != nil {
		return fmt.Errorf("failed to detach tag from tasks: %w", err)
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM tags WHERE user_id = $1 AND id = $2`, userID, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tag deletion: %w", err)
	}
	return nil
}
