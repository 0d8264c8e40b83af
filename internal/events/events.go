package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// EventType names a task lifecycle transition.
type EventType string

// Lifecycle event types.
const (
	TaskCreated   EventType = "task.created"
	TaskUpdated   EventType = "task.updated"
	TaskCompleted EventType = "task.completed"
	TaskDeleted   EventType = "task.deleted"
)

// TaskEvent records a committed change to a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   EventType `json:"type"`
	TaskID int64     `json:"task_id"`

	// Task is a snapshot of the task after the change, or before it for deletions.
	Task *domain.Task `json:"task,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent creates an event for task. The snapshot is copied so later
// changes to task do not leak into handlers.
func NewTaskEvent(eventType EventType, task *domain.Task, at time.Time) *TaskEvent {
	event := &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at.UTC(),
	}
	if task != nil {
		event.TaskID = task.ID
		event.Task = task.Clone()
	}
	return event
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// HandlerFunc adapts an ordinary function to EventHandler.
type HandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
