package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/taskhive/taskhive/modules/tags"
)

// MockTaskStore is a mock implementation of TaskStore.
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Task, int, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Task), args.Int(1), args.Error(2)
}

func (m *MockTaskStore) Find(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockTaskStore) Create(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Update(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) ([]tags.Tag, error) {
	args := m.Called(ctx, userID, taskID, tagIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tags.Tag), args.Error(1)
}

func (m *MockTaskStore) SoftDelete(ctx context.Context, userID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}
