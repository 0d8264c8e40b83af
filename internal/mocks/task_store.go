package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore is a mock of store.TaskStore interface for use with testify/mock
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func taskResult(args mock.Arguments) (*domain.Task, error) {
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func tasksResult(args mock.Arguments) ([]*domain.Task, error) {
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// Create is a mock implementation of store.TaskStore.Create
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return taskResult(m.Called(ctx, task))
}

// GetByID is a mock implementation of store.TaskStore.GetByID
func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return taskResult(m.Called(ctx, id))
}

// Update is a mock implementation of store.TaskStore.Update
func (m *MockTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	return taskResult(m.Called(ctx, id, patch))
}

// Complete is a mock implementation of store.TaskStore.Complete
func (m *MockTaskStore) Complete(ctx context.Context, id int64, at time.Time) (*domain.Task, error) {
	return taskResult(m.Called(ctx, id, at))
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// FindAll is a mock implementation of store.TaskStore.FindAll
func (m *MockTaskStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return tasksResult(m.Called(ctx))
}

// Search is a mock implementation of store.TaskStore.Search
func (m *MockTaskStore) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	return tasksResult(m.Called(ctx, keyword))
}
