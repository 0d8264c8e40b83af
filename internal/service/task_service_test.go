package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock used by every test: 2025-02-10 14:00 UTC.
var fixedNow = time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []events.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]events.EventType, 0, len(e.events))
	for _, ev := range e.events {
		types = append(types, ev.Type)
	}
	return types
}

type recordingObserver struct {
	codes []apperr.Code
}

func (o *recordingObserver) ObserveServiceError(_ string, code apperr.Code) {
	o.codes = append(o.codes, code)
}

type fixture struct {
	store    *mocks.MockTaskStore
	emitter  *recordingEmitter
	observer *recordingObserver
	svc      service.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &mocks.MockTaskStore{},
		emitter:  &recordingEmitter{},
		observer: &recordingObserver{},
	}
	svc, err := service.NewTaskService(f.store, nil,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithEventEmitter(f.emitter),
		service.WithErrorObserver(f.observer),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func pendingTask(id int64, due time.Time) *domain.Task {
	return &domain.Task{
		ID:        id,
		Title:     "Task",
		DueDate:   due,
		Status:    domain.TaskStatusPending,
		CreatedAt: fixedNow.Add(-24 * time.Hour),
		UpdatedAt: fixedNow.Add(-24 * time.Hour),
	}
}

func completedTask(id int64) *domain.Task {
	task := pendingTask(id, fixedNow.Add(-72*time.Hour))
	at := fixedNow.Add(-time.Hour)
	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &at
	return task
}

func assertCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }

var errDriver = errors.New("driver: bad connection")

func TestNewTaskService_RequiresStore(t *testing.T) {
	svc, err := service.NewTaskService(nil, nil)
	assert.Nil(t, svc)
	assert.Error(t, err)
}

func TestCreateTask(t *testing.T) {
	t.Run("defaults due date to seven days out", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "Write report" &&
				task.DueDate.Equal(fixedNow.Add(7*24*time.Hour)) &&
				task.Status == domain.TaskStatusPending &&
				task.CompletedAt == nil
		})).Return(pendingTask(1, fixedNow.Add(7*24*time.Hour)), nil)

		got, err := f.svc.CreateTask(context.Background(), domain.TaskInput{Title: "Write report"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, domain.TaskStatusPending, got.Status)
		assert.Equal(t, []events.EventType{events.TaskCreated}, f.emitter.types())
		f.store.AssertExpectations(t)
	})

	t.Run("keeps explicit due date and derives status", func(t *testing.T) {
		f := newFixture(t)
		due := time.Date(2025, 2, 10, 18, 0, 0, 0, time.UTC)
		f.store.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.DueDate.Equal(due)
		})).Return(pendingTask(2, due), nil)

		got, err := f.svc.CreateTask(context.Background(), domain.TaskInput{Title: "Today", DueDate: &due})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDueToday, got.Status)
	})

	t.Run("blank title never reaches the store", func(t *testing.T) {
		f := newFixture(t)

		got, err := f.svc.CreateTask(context.Background(), domain.TaskInput{Title: "   "})

		assert.Nil(t, got)
		assertCode(t, err, apperr.CodeValidationFailed)
		f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("known store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("Create", mock.Anything, mock.Anything).Return(nil, store.ErrDuplicate)

		_, err := f.svc.CreateTask(context.Background(), domain.TaskInput{Title: "x"})

		assertCode(t, err, apperr.CodeDBOperation)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("unknown store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("Create", mock.Anything, mock.Anything).Return(nil, errDriver)

		_, err := f.svc.CreateTask(context.Background(), domain.TaskInput{Title: "x"})

		assertCode(t, err, apperr.CodeCreationFailed)
		assert.Equal(t, []apperr.Code{apperr.CodeCreationFailed}, f.observer.codes)
	})
}

func TestListTasks(t *testing.T) {
	t.Run("derives status for every task", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("FindAll", mock.Anything).Return([]*domain.Task{
			pendingTask(1, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)),
			pendingTask(2, time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)),
			pendingTask(3, time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)),
			completedTask(4),
		}, nil)

		got, err := f.svc.ListTasks(context.Background())

		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, domain.TaskStatusDueToday, got[0].Status)
		assert.Equal(t, domain.TaskStatusOverdue, got[1].Status)
		assert.Equal(t, domain.TaskStatusPending, got[2].Status)
		assert.Equal(t, domain.TaskStatusCompleted, got[3].Status)
	})

	t.Run("empty store", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("FindAll", mock.Anything).Return([]*domain.Task{}, nil)

		got, err := f.svc.ListTasks(context.Background())

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("store failures", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want apperr.Code
		}{
			{name: "unknown", err: errDriver, want: apperr.CodeFetchFailed},
			{name: "known", err: store.ErrInvalidEntity, want: apperr.CodeDBOperation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.store.On("FindAll", mock.Anything).Return(nil, tt.err)

				got, err := f.svc.ListTasks(context.Background())

				assert.Nil(t, got)
				assertCode(t, err, tt.want)
			})
		}
	})

	t.Run("missing due date", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("FindAll", mock.Anything).Return([]*domain.Task{{ID: 1, Title: "broken", Status: domain.TaskStatusPending}}, nil)

		_, err := f.svc.ListTasks(context.Background())

		assertCode(t, err, apperr.CodeStatusCalculationFailed)
	})
}

func TestGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(5)).Return(pendingTask(5, fixedNow.Add(-48*time.Hour)), nil)

		got, err := f.svc.GetTask(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusOverdue, got.Status)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetTask(context.Background(), 0)

		assertCode(t, err, apperr.CodeInvalidID)
		f.store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(5)).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.GetTask(context.Background(), 5)

		assertCode(t, err, apperr.CodeNotFound)
	})
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		f := newFixture(t)
		patch := domain.TaskPatch{Title: strPtr("Renamed")}
		updated := pendingTask(3, fixedNow.Add(-48*time.Hour))
		updated.Title = "Renamed"
		f.store.On("GetByID", mock.Anything, int64(3)).Return(pendingTask(3, fixedNow.Add(-48*time.Hour)), nil)
		f.store.On("Update", mock.Anything, int64(3), patch).Return(updated, nil)

		got, err := f.svc.UpdateTask(ctx, 3, patch)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, domain.TaskStatusOverdue, got.Status)
		assert.Equal(t, []events.EventType{events.TaskUpdated}, f.emitter.types())
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(3)).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.UpdateTask(ctx, 3, domain.TaskPatch{Title: strPtr("x")})

		assertCode(t, err, apperr.CodeNotFound)
		assert.Equal(t, http.StatusNotFound, apperr.CodeOf(err).Status())
		f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank title rejected before write", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(3)).Return(pendingTask(3, fixedNow), nil)

		_, err := f.svc.UpdateTask(ctx, 3, domain.TaskPatch{Title: strPtr(" ")})

		assertCode(t, err, apperr.CodeValidationFailed)
		f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty patch writes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(3)).Return(pendingTask(3, fixedNow), nil)

		got, err := f.svc.UpdateTask(ctx, 3, domain.TaskPatch{})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDueToday, got.Status)
		f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("store failures", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want apperr.Code
		}{
			{name: "unknown", err: errDriver, want: apperr.CodeUpdateFailed},
			{name: "constraint", err: store.ErrInvalidEntity, want: apperr.CodeDBOperation},
			{name: "deleted meanwhile", err: store.ErrTaskNotFound, want: apperr.CodeNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.store.On("GetByID", mock.Anything, int64(3)).Return(pendingTask(3, fixedNow), nil)
				f.store.On("Update", mock.Anything, int64(3), mock.Anything).Return(nil, tt.err)

				_, err := f.svc.UpdateTask(ctx, 3, domain.TaskPatch{Title: strPtr("x")})

				assertCode(t, err, tt.want)
				assert.Empty(t, f.emitter.types())
			})
		}
	})
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a pending task", func(t *testing.T) {
		f := newFixture(t)
		done := completedTask(9)
		done.CompletedAt = &fixedNow
		f.store.On("GetByID", mock.Anything, int64(9)).Return(pendingTask(9, fixedNow.Add(-72*time.Hour)), nil)
		f.store.On("Complete", mock.Anything, int64(9), fixedNow).Return(done, nil)

		got, err := f.svc.CompleteTask(ctx, 9)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, got.CompletedAt.Equal(fixedNow))
		assert.Equal(t, []events.EventType{events.TaskCompleted}, f.emitter.types())
		f.store.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CompleteTask(ctx, -1)

		assertCode(t, err, apperr.CodeInvalidID)
		assert.Equal(t, http.StatusBadRequest, apperr.CodeOf(err).Status())
	})

	t.Run("missing task", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(42)).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.CompleteTask(ctx, 42)

		assertCode(t, err, apperr.CodeNotFound)
		assert.Equal(t, http.StatusNotFound, apperr.CodeOf(err).Status())
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(9)).Return(completedTask(9), nil)

		_, err := f.svc.CompleteTask(ctx, 9)

		assertCode(t, err, apperr.CodeAlreadyCompleted)
		f.store.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("lost race to a concurrent completion", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(9)).Return(pendingTask(9, fixedNow), nil)
		f.store.On("Complete", mock.Anything, int64(9), fixedNow).Return(nil, store.ErrTaskAlreadyCompleted)

		_, err := f.svc.CompleteTask(ctx, 9)

		assertCode(t, err, apperr.CodeAlreadyCompleted)
	})

	t.Run("unknown store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(9)).Return(pendingTask(9, fixedNow), nil)
		f.store.On("Complete", mock.Anything, int64(9), fixedNow).Return(nil, errDriver)

		_, err := f.svc.CompleteTask(ctx, 9)

		assertCode(t, err, apperr.CodeCompletionFailed)
		assert.ErrorIs(t, err, errDriver)
	})
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the pre-deletion snapshot", func(t *testing.T) {
		f := newFixture(t)
		snapshot := pendingTask(7, fixedNow.Add(48*time.Hour))
		snapshot.Description = strPtr("notes")
		f.store.On("GetByID", mock.Anything, int64(7)).Return(snapshot, nil)
		f.store.On("Delete", mock.Anything, int64(7)).Return(nil)

		got, err := f.svc.DeleteTask(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "notes", *got.Description)
		assert.Equal(t, []events.EventType{events.TaskDeleted}, f.emitter.types())
		f.store.AssertExpectations(t)
	})

	t.Run("missing task", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(7)).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.DeleteTask(ctx, 7)

		assertCode(t, err, apperr.CodeNotFound)
		f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("GetByID", mock.Anything, int64(7)).Return(pendingTask(7, fixedNow), nil)
		f.store.On("Delete", mock.Anything, int64(7)).Return(errDriver)

		_, err := f.svc.DeleteTask(ctx, 7)

		assertCode(t, err, apperr.CodeDeletionFailed)
	})

	t.Run("emitter failure does not change the result", func(t *testing.T) {
		f := newFixture(t)
		f.emitter.err = errors.New("handler failed")
		f.store.On("GetByID", mock.Anything, int64(7)).Return(pendingTask(7, fixedNow), nil)
		f.store.On("Delete", mock.Anything, int64(7)).Return(nil)

		got, err := f.svc.DeleteTask(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})
}

func TestSearchTasks(t *testing.T) {
	ctx := context.Background()

	for _, keyword := range []string{"", "   "} {
		t.Run("keyword required "+keyword, func(t *testing.T) {
			f := newFixture(t)

			got, err := f.svc.SearchTasks(ctx, keyword)

			assert.Nil(t, got)
			assertCode(t, err, apperr.CodeKeywordRequired)
			assert.Equal(t, http.StatusBadRequest, apperr.CodeOf(err).Status())
			f.store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}

	t.Run("trims keyword and derives status", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("Search", mock.Anything, "milk").Return([]*domain.Task{
			pendingTask(1, fixedNow.Add(-48*time.Hour)),
		}, nil)

		got, err := f.svc.SearchTasks(ctx, "  milk ")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.TaskStatusOverdue, got[0].Status)
	})

	t.Run("unknown store error", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("Search", mock.Anything, "milk").Return(nil, errDriver)

		_, err := f.svc.SearchTasks(ctx, "milk")

		assertCode(t, err, apperr.CodeFetchFailed)
	})
}

func TestReferenceLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	taskStore := &mocks.MockTaskStore{}
	svc, err := service.NewTaskService(taskStore, nil,
		service.WithClock(func() time.Time { return time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC) }),
		service.WithLocation(tokyo),
	)
	require.NoError(t, err)

	// 2025-02-10 12:00 UTC is still the 10th in Tokyo, which is already the 11th.
	taskStore.On("FindAll", mock.Anything).Return([]*domain.Task{
		pendingTask(1, time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)),
	}, nil)

	got, err := svc.ListTasks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOverdue, got[0].Status)
}
