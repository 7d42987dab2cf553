package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/pkg/auth"
)

// Unique constraint names on the users table. The storage layer translates
// violations into domain errors so callers never see pg error codes.
const (
	constraintUsersEmail = "users_email_key"
	constraintUsersOAuth = "users_oauth_provider_oauth_id_key"
)

// UserStorage is the postgres implementation of auth.UserStore. Nullable
// columns are flattened to empty strings on read and stored as NULL when
// empty, so unlinked rows carry NULLs and never collide on the
// (oauth_provider, oauth_id) unique constraint.
type UserStorage struct {
	db *pgxpool.Pool
}

func NewUserStorage(db *pgxpool.Pool) *UserStorage {
	return &UserStorage{db: db}
}

const userColumns = `id, email, COALESCE(password_hash, ''), COALESCE(full_name, ''),
	is_active, is_superuser, COALESCE(oauth_provider, ''), COALESCE(oauth_id, ''),
	COALESCE(avatar_url, ''), created_at, updated_at`

func (s *UserStorage) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStorage) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *UserStorage) FindByOAuth(ctx context.Context, provider, oauthID string) (*auth.User, error) {
	return s.findOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth_provider = $1 AND oauth_id = $2`,
		provider, oauthID)
}

func (s *UserStorage) Create(ctx context.Context, user *auth.User) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, is_active, is_superuser,
			oauth_provider, oauth_id, avatar_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
		RETURNING created_at, updated_at`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.IsActive, user.IsSuperuser,
		user.OAuthProvider, user.OAuthID, user.AvatarURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStorage) Update(ctx context.Context, user *auth.User) error {
	err := s.db.QueryRow(ctx, `
		UPDATE users SET email = $2, password_hash = NULLIF($3, ''), full_name = NULLIF($4, ''),
			is_active = $5, is_superuser = $6, oauth_provider = NULLIF($7, ''),
			oauth_id = NULLIF($8, ''), avatar_url = NULLIF($9, ''), updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.IsActive, user.IsSuperuser,
		user.OAuthProvider, user.OAuthID, user.AvatarURL,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrUserNotFound
		}
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserStorage) findOne(ctx context.Context, query string, args ...any) (*auth.User, error) {
	var user auth.User
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.IsActive, &user.IsSuperuser, &user.OAuthProvider, &user.OAuthID,
		&user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintUsersEmail:
		return auth.ErrEmailAlreadyExists
	case constraintUsersOAuth:
		return auth.ErrAlreadyLinkedElsewhere
	default:
		return auth.ErrEmailAlreadyExists
	}
}
