package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// MockTaskService implements service.TaskService for testing.
// Methods without a function set return Task/Tasks and DefaultError.
type MockTaskService struct {
	CreateTaskFn   func(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	ListTasksFn    func(ctx context.Context) ([]*domain.Task, error)
	GetTaskFn      func(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTaskFn   func(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	CompleteTaskFn func(ctx context.Context, id int64) (*domain.Task, error)
	DeleteTaskFn   func(ctx context.Context, id int64) (*domain.Task, error)
	SearchTasksFn  func(ctx context.Context, keyword string) ([]*domain.Task, error)

	// Default return values
	Task         *domain.Task
	Tasks        []*domain.Task
	DefaultError error
}

// CreateTask implements the TaskService.CreateTask method
func (m *MockTaskService) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, in)
	}
	return m.Task, m.DefaultError
}

// ListTasks implements the TaskService.ListTasks method
func (m *MockTaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return m.Tasks, m.DefaultError
}

// GetTask implements the TaskService.GetTask method
func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return m.Task, m.DefaultError
}

// UpdateTask implements the TaskService.UpdateTask method
func (m *MockTaskService) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, patch)
	}
	return m.Task, m.DefaultError
}

// CompleteTask implements the TaskService.CompleteTask method
func (m *MockTaskService) CompleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.CompleteTaskFn != nil {
		return m.CompleteTaskFn(ctx, id)
	}
	return m.Task, m.DefaultError
}

// DeleteTask implements the TaskService.DeleteTask method
func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return m.Task, m.DefaultError
}

// SearchTasks implements the TaskService.SearchTasks method
func (m *MockTaskService) SearchTasks(ctx context.Context, keyword string) ([]*domain.Task, error) {
	if m.SearchTasksFn != nil {
		return m.SearchTasksFn(ctx, keyword)
	}
	return m.Tasks, m.DefaultError
}
