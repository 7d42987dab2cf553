package tags

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/pkg/jwt"
)

// TagStore is the persistence contract of the tags module.
type TagStore interface {
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Tag, int, error)
	Find(ctx context.Context, userID, tagID uuid.UUID) (*Tag, error)
	Create(ctx context.Context, tag *Tag) error
	Update(ctx context.Context, tag *Tag) error
	Delete(ctx context.Context, userID, tagID uuid.UUID) error
}

// Service carries tag business rules: name uniqueness per user, color
// defaulting, user-scoped access.
type Service struct {
	store  TagStore
	tokens *jwt.Service
	log    *slog.Logger
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(store TagStore, tokens *jwt.Service, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page is one page of tags with pagination metadata.
type Page struct {
	Items    []Tag
	Total    int
	Page     int
	PageSize int
	Pages    int
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*Page, error) {
	items, total, err := s.store.List(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return &Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, name, color string) (*Tag, error) {
	if color == "" {
		color = DefaultColor
	}
	tag := &Tag{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Color:  color,
	}
	if err := s.store.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *Service) Get(ctx context.Context, userID, tagID uuid.UUID) (*Tag, error) {
	return s.store.Find(ctx, userID, tagID)
}

// UpdateParams carries a partial tag update; nil fields stay unchanged.
type UpdateParams struct {
	Name  *string
	Color *string
}

func (s *Service) Update(ctx context.Context, userID, tagID uuid.UUID, params UpdateParams) (*Tag, error) {
	tag, err := s.store.Find(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		tag.Name = *params.Name
	}
	if params.Color != nil {
		tag.Color = *params.Color
	}
	if err := s.store.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *Service) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	return s.store.Delete(ctx, userID, tagID)
}
