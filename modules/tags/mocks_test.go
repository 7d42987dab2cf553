package tags

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTagStore is a mock implementation of TagStore.
type MockTagStore struct {
	mock.Mock
}

func (m *MockTagStore) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Tag, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Tag), args.Int(1), args.Error(2)
}

func (m *MockTagStore) Find(ctx context.Context, userID, tagID uuid.UUID) (*Tag, error) {
	args := m.Called(ctx, userID, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tag), args.Error(1)
}

func (m *MockTagStore) Create(ctx context.Context, tag *Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagStore) Update(ctx context.Context, tag *Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagStore) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	args := m.Called(ctx, userID, tagID)
	return args.Error(0)
}
