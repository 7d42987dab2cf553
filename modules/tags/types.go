package tags

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultColor is assigned when a tag is created without one.
const DefaultColor = "#6B7280"

var (
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag name already exists")
)

// Tag is a per-user label. Names are unique within a user, colors are hex
// RGB. TaskCount is a read-side projection and never written back.
type Tag struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Color     string
	TaskCount int
	CreatedAt time.Time
}
