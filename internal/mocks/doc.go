// Package mocks provides shared test doubles.
//
// MockTaskStore is a testify mock of store.TaskStore for service and cache
// tests. MockTaskService stubs service.TaskService with per-method function
// fields for handler tests:
//
//	svc := &mocks.MockTaskService{
//	    GetTaskFn: func(ctx context.Context, id int64) (*domain.Task, error) {
//	        return nil, apperr.New(apperr.CodeNotFound, "get", nil)
//	    },
//	}
package mocks
