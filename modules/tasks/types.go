package tasks

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/modules/tags"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func Statuses() []string {
	return []string{string(StatusPending), string(StatusInProgress), string(StatusCompleted)}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func Priorities() []string {
	return []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh), string(PriorityUrgent)}
}

var ErrTaskNotFound = errors.New("task not found")

// Task is a user-owned todo item. Deleted tasks stay in storage with a
// tombstone flag and never surface through the store.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []tags.Tag
}

// Filter narrows and orders a task listing. Offset/Limit paginate; zero-value
// filters are ignored.
type Filter struct {
	Status   string
	Priority string
	TagIDs   []uuid.UUID
	Search   string
	SortBy   string
	Desc     bool
	Offset   int
	Limit    int
}
