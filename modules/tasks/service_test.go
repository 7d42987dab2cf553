package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/modules/tags"
	"github.com/taskhive/taskhive/pkg/jwt"
)

func newServiceWithStore(t *testing.T) (*Service, *MockTaskStore) {
	t.Helper()
	tokens, err := jwt.New(jwt.Config{SigningKey: "test-signing-key", AccessTTL: time.Hour})
	require.NoError(t, err)
	store := new(MockTaskStore)
	return NewService(store, tokens), store
}

func TestService_List(t *testing.T) {
	t.Parallel()

	t.Run("translates page to offset and strips sort direction", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		store.On("List", mock.Anything, userID, Filter{
			Status: "pending",
			SortBy: "due_date",
			Desc:   true,
			Offset: 40,
			Limit:  20,
		}).Return([]Task{}, 45, nil)

		page, err := svc.List(context.Background(), userID, ListParams{
			Page: 3, PageSize: 20, Status: "pending", SortBy: "-due_date",
		})
		require.NoError(t, err)
		assert.Equal(t, 45, page.Total)
		assert.Equal(t, 3, page.Pages)
		store.AssertExpectations(t)
	})
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("defaults status and priority", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		store.On("Create", mock.Anything, mock.MatchedBy(func(task *Task) bool {
			return task.Status == StatusPending && task.Priority == PriorityMedium && task.UserID == userID
		})).Return(nil)

		task, err := svc.Create(context.Background(), userID, CreateParams{Title: "write report"})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, task.Status)
		assert.Empty(t, task.Tags)
	})

	t.Run("attaches requested tags", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		tagID := uuid.New()
		attached := []tags.Tag{{ID: tagID, UserID: userID, Name: "work"}}
		store.On("Create", mock.Anything, mock.Anything).Return(nil)
		store.On("ReplaceTags", mock.Anything, userID, mock.Anything, []uuid.UUID{tagID}).Return(attached, nil)

		task, err := svc.Create(context.Background(), userID, CreateParams{
			Title: "write report", TagIDs: []uuid.UUID{tagID},
		})
		require.NoError(t, err)
		assert.Equal(t, attached, task.Tags)
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	t.Run("only touches provided fields", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		taskID := uuid.New()
		store.On("Find", mock.Anything, userID, taskID).Return(&Task{
			ID: taskID, UserID: userID, Title: "old title", Status: StatusPending, Priority: PriorityHigh,
		}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(task *Task) bool {
			return task.Title == "new title" && task.Priority == PriorityHigh
		})).Return(nil)

		title := "new title"
		task, err := svc.Update(context.Background(), userID, taskID, UpdateParams{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, PriorityHigh, task.Priority)
		store.AssertExpectations(t)
	})

	t.Run("explicit empty tag list clears tags", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		taskID := uuid.New()
		store.On("Find", mock.Anything, userID, taskID).Return(&Task{ID: taskID, UserID: userID, Title: "t"}, nil)
		store.On("Update", mock.Anything, mock.Anything).Return(nil)
		store.On("ReplaceTags", mock.Anything, userID, taskID, []uuid.UUID{}).Return([]tags.Tag{}, nil)

		empty := []uuid.UUID{}
		task, err := svc.Update(context.Background(), userID, taskID, UpdateParams{TagIDs: &empty})
		require.NoError(t, err)
		assert.Empty(t, task.Tags)
		store.AssertExpectations(t)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		store.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrTaskNotFound)

		_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateParams{})
		require.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestService_CompleteAndReopen(t *testing.T) {
	t.Parallel()

	t.Run("complete stamps completed_at", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		taskID := uuid.New()
		store.On("Find", mock.Anything, userID, taskID).Return(&Task{
			ID: taskID, UserID: userID, Title: "t", Status: StatusInProgress,
		}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(task *Task) bool {
			return task.Status == StatusCompleted && task.CompletedAt != nil
		})).Return(nil)

		task, err := svc.Complete(context.Background(), userID, taskID)
		require.NoError(t, err)
		assert.NotNil(t, task.CompletedAt)
	})

	t.Run("reopen resets to pending", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		taskID := uuid.New()
		now := time.Now()
		store.On("Find", mock.Anything, userID, taskID).Return(&Task{
			ID: taskID, UserID: userID, Title: "t", Status: StatusCompleted, CompletedAt: &now,
		}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(task *Task) bool {
			return task.Status == StatusPending && task.CompletedAt == nil
		})).Return(nil)

		task, err := svc.Reopen(context.Background(), userID, taskID)
		require.NoError(t, err)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("reopening a non-completed task reads as missing", func(t *testing.T) {
		t.Parallel()

		svc, store := newServiceWithStore(t)
		userID := uuid.New()
		taskID := uuid.New()
		store.On("Find", mock.Anything, userID, taskID).Return(&Task{
			ID: taskID, UserID: userID, Title: "t", Status: StatusPending,
		}, nil)

		_, err := svc.Reopen(context.Background(), userID, taskID)
		require.ErrorIs(t, err, ErrTaskNotFound)
	})
}
