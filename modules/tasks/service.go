package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/modules/tags"
	"github.com/taskhive/taskhive/pkg/jwt"
)

// TaskStore is the persistence contract of the tasks module.
type TaskStore interface {
	List(ctx context.Context, userID uuid.UUID, f Filter) ([]Task, int, error)
	Find(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) ([]tags.Tag, error)
	SoftDelete(ctx context.Context, userID, taskID uuid.UUID) error
}

type Service struct {
	store  TaskStore
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

func NewService(store TaskStore, tokens *jwt.Service, opts ...Option) *Service {
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

// ListParams selects and orders a page of tasks. SortBy optionally carries a
// leading '-' for descending order.
type ListParams struct {
	Page     int
	PageSize int
	Status   string
	Priority string
	TagIDs   []uuid.UUID
	Search   string
	SortBy   string
}

// Page is one page of tasks with pagination metadata.
type Page struct {
	Items    []Task
	Total    int
	Page     int
	PageSize int
	Pages    int
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, params ListParams) (*Page, error) {
	sortBy := params.SortBy
	desc := false
	if len(sortBy) > 0 && sortBy[0] == '-' {
		desc = true
		sortBy = sortBy[1:]
	}

	items, total, err := s.store.List(ctx, userID, Filter{
		Status:   params.Status,
		Priority: params.Priority,
		TagIDs:   params.TagIDs,
		Search:   params.Search,
		SortBy:   sortBy,
		Desc:     desc,
		Offset:   (params.Page - 1) * params.PageSize,
		Limit:    params.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &Page{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Pages:    (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

// CreateParams carries the fields of a new task. Zero-value status and
// priority default to pending/medium.
type CreateParams struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	TagIDs      []uuid.UUID
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Task, error) {
	if params.Status == "" {
		params.Status = StatusPending
	}
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}

	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		Tags:        []tags.Tag{},
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}

	if len(params.TagIDs) > 0 {
		attached, err := s.store.ReplaceTags(ctx, userID, task.ID, params.TagIDs)
		if err != nil {
			return nil, err
		}
		task.Tags = attached
	}
	return task, nil
}

func (s *Service) Get(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	return s.store.Find(ctx, userID, taskID)
}

// UpdateParams carries a partial task update; nil fields stay unchanged.
// A non-nil empty TagIDs slice clears the tag set.
type UpdateParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	TagIDs      *[]uuid.UUID
}

func (s *Service) Update(ctx context.Context, userID, taskID uuid.UUID, params UpdateParams) (*Task, error) {
	task, err := s.store.Find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}

	if params.TagIDs != nil {
		attached, err := s.store.ReplaceTags(ctx, userID, taskID, *params.TagIDs)
		if err != nil {
			return nil, err
		}
		task.Tags = attached
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.store.SoftDelete(ctx, userID, taskID)
}

// Complete marks the task completed and stamps completed_at. Completing an
// already-completed task refreshes the stamp.
func (s *Service) Complete(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	task, err := s.store.Find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task.Status = StatusCompleted
	task.CompletedAt = &now
	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Reopen returns a completed task to pending. Tasks in any other status
// read as not found, so the caller cannot probe state through this endpoint.
func (s *Service) Reopen(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	task, err := s.store.Find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != StatusCompleted {
		return nil, ErrTaskNotFound
	}

	task.Status = StatusPending
	task.CompletedAt = nil
	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
