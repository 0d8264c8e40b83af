package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides the task lifecycle operations.
type TaskService interface {
	// CreateTask persists a new pending task. A missing due date defaults
	// to the configured offset from now.
	CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)

	// ListTasks returns every task with its derived status.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// GetTask returns one task with its derived status.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// UpdateTask applies the non-nil fields of patch to an existing task.
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// CompleteTask moves a task to COMPLETED. It fails with
	// already_completed if the task was completed before.
	CompleteTask(ctx context.Context, id int64) (*domain.Task, error)

	// DeleteTask removes a task and returns it as it was before deletion.
	DeleteTask(ctx context.Context, id int64) (*domain.Task, error)

	// SearchTasks returns tasks whose title or description contains
	// keyword, ignoring case.
	SearchTasks(ctx context.Context, keyword string) ([]*domain.Task, error)
}

// Option configures optional collaborators of the task service.
type Option func(*taskServiceImpl)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *taskServiceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the time zone in which calendar dates are compared.
func WithLocation(loc *time.Location) Option {
	return func(s *taskServiceImpl) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDefaultDueIn sets the due date offset for tasks created without one.
func WithDefaultDueIn(d time.Duration) Option {
	return func(s *taskServiceImpl) {
		if d > 0 {
			s.defaultDueIn = d
		}
	}
}

// WithEventEmitter publishes lifecycle events after successful mutations.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *taskServiceImpl) {
		s.emitter = emitter
	}
}

// WithErrorObserver reports every failed operation to observer.
func WithErrorObserver(observer ErrorObserver) Option {
	return func(s *taskServiceImpl) {
		s.observer = observer
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store        store.TaskStore
	emitter      events.EventEmitter
	observer     ErrorObserver
	clock        func() time.Time
	loc          *time.Location
	defaultDueIn time.Duration
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the task store is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger, opts ...Option) (TaskService, error) {
	if taskStore == nil {
		return nil, errors.New("taskStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		store:        taskStore,
		clock:        time.Now,
		loc:          time.UTC,
		defaultDueIn: domain.DefaultDueIn,
		logger:       logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// now returns the current time in the reference zone.
func (s *taskServiceImpl) now() time.Time {
	return s.clock().In(s.loc)
}

// fail builds the *apperr.Error for a failed operation, logs it and
// notifies the observer.
func (s *taskServiceImpl) fail(ctx context.Context, op string, code apperr.Code, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	attrs := []any{
		slog.String("operation", op),
		slog.String("code", string(code)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", redact.Error(err)))
	}
	if code.Status() >= http.StatusInternalServerError {
		log.Error("task operation failed", attrs...)
	} else {
		log.Debug("task operation rejected", attrs...)
	}

	if s.observer != nil {
		s.observer.ObserveServiceError(op, code)
	}
	return apperr.New(code, op, err)
}

// checkID rejects identifiers that no store could have assigned.
func (s *taskServiceImpl) checkID(ctx context.Context, op string, id int64) error {
	if id <= 0 {
		return s.fail(ctx, op, apperr.CodeInvalidID, domain.ErrInvalidID)
	}
	return nil
}

// lookup fetches the task a mutation acts on.
func (s *taskServiceImpl) lookup(ctx context.Context, op string, id int64, fallback apperr.Code) (*domain.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, classifyStoreError(err, fallback), err)
	}
	return task, nil
}

// withStatus replaces the persisted status with the derived one.
func (s *taskServiceImpl) withStatus(ctx context.Context, op string, task *domain.Task, now time.Time) error {
	status, err := domain.DeriveStatus(task, now)
	if err != nil {
		return s.fail(ctx, op, apperr.CodeStatusCalculationFailed, err)
	}
	task.Status = status
	return nil
}

// withStatusBestEffort derives the status of a mutated task. The mutation
// has already been committed, so a derivation failure keeps the persisted
// status instead of failing the call.
func (s *taskServiceImpl) withStatusBestEffort(ctx context.Context, task *domain.Task, now time.Time) {
	status, err := domain.DeriveStatus(task, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to derive status for mutated task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return
	}
	task.Status = status
}

func (s *taskServiceImpl) withStatuses(ctx context.Context, op string, tasks []*domain.Task) ([]*domain.Task, error) {
	now := s.now()
	for _, task := range tasks {
		if err := s.withStatus(ctx, op, task, now); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// emit publishes a lifecycle event. Failures are logged only.
func (s *taskServiceImpl) emit(ctx context.Context, eventType events.EventType, task *domain.Task, at time.Time) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, events.NewTaskEvent(eventType, task, at)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to emit task event",
			slog.String("event_type", string(eventType)),
			slog.Int64("task_id", task.ID),
			slog.String("error", redact.Error(err)))
	}
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	now := s.now()

	task, err := domain.NewTask(in, now, s.defaultDueIn)
	if err != nil {
		return nil, s.fail(ctx, OpCreateTask, classifyDomainError(err, apperr.CodeCreationFailed), err)
	}

	created, err := s.store.Create(ctx, task)
	if err != nil {
		code := apperr.CodeCreationFailed
		switch {
		case errors.Is(err, domain.ErrValidation):
			code = apperr.CodeValidationFailed
		case store.IsKnownError(err):
			code = apperr.CodeDBOperation
		}
		return nil, s.fail(ctx, OpCreateTask, code, err)
	}

	s.emit(ctx, events.TaskCreated, created, now)
	s.withStatusBestEffort(ctx, created, now)

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.Int64("task_id", created.ID))
	return created, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, OpListTasks, classifyStoreError(err, apperr.CodeFetchFailed), err)
	}
	return s.withStatuses(ctx, OpListTasks, tasks)
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := s.checkID(ctx, OpGetTask, id); err != nil {
		return nil, err
	}

	task, err := s.lookup(ctx, OpGetTask, id, apperr.CodeFetchFailed)
	if err != nil {
		return nil, err
	}
	if err := s.withStatus(ctx, OpGetTask, task, s.now()); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// An empty patch writes nothing and returns the task unchanged.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if err := s.checkID(ctx, OpUpdateTask, id); err != nil {
		return nil, err
	}

	current, err := s.lookup(ctx, OpUpdateTask, id, apperr.CodeUpdateFailed)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if patch.IsEmpty() {
		s.withStatusBestEffort(ctx, current, now)
		return current, nil
	}

	if err := current.Clone().Apply(patch); err != nil {
		return nil, s.fail(ctx, OpUpdateTask, classifyDomainError(err, apperr.CodeUpdateFailed), err)
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, OpUpdateTask, classifyStoreError(err, apperr.CodeUpdateFailed), err)
	}

	s.emit(ctx, events.TaskUpdated, updated, now)
	s.withStatusBestEffort(ctx, updated, now)
	return updated, nil
}

// CompleteTask implements TaskService.CompleteTask
//
// The read reports not_found and already_completed precisely; the store's
// conditional write settles concurrent completions of the same task.
func (s *taskServiceImpl) CompleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := s.checkID(ctx, OpCompleteTask, id); err != nil {
		return nil, err
	}

	current, err := s.lookup(ctx, OpCompleteTask, id, apperr.CodeCompletionFailed)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := current.Complete(now); err != nil {
		return nil, s.fail(ctx, OpCompleteTask, classifyDomainError(err, apperr.CodeCompletionFailed), err)
	}

	completed, err := s.store.Complete(ctx, id, now)
	if err != nil {
		return nil, s.fail(ctx, OpCompleteTask, classifyStoreError(err, apperr.CodeCompletionFailed), err)
	}

	s.emit(ctx, events.TaskCompleted, completed, now)

	logger.FromContextOrDefault(ctx, s.logger).Info("task completed",
		slog.Int64("task_id", id))
	return completed, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := s.checkID(ctx, OpDeleteTask, id); err != nil {
		return nil, err
	}

	snapshot, err := s.lookup(ctx, OpDeleteTask, id, apperr.CodeDeletionFailed)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, s.fail(ctx, OpDeleteTask, classifyStoreError(err, apperr.CodeDeletionFailed), err)
	}

	now := s.now()
	s.emit(ctx, events.TaskDeleted, snapshot, now)
	s.withStatusBestEffort(ctx, snapshot, now)

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.Int64("task_id", id))
	return snapshot, nil
}

// SearchTasks implements TaskService.SearchTasks
func (s *taskServiceImpl) SearchTasks(ctx context.Context, keyword string) ([]*domain.Task, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, s.fail(ctx, OpSearchTasks, apperr.CodeKeywordRequired, nil)
	}

	tasks, err := s.store.Search(ctx, keyword)
	if err != nil {
		return nil, s.fail(ctx, OpSearchTasks, classifyStoreError(err, apperr.CodeFetchFailed), err)
	}
	return s.withStatuses(ctx, OpSearchTasks, tasks)
}

// Ensure taskServiceImpl implements TaskService
var _ TaskService = (*taskServiceImpl)(nil)
