package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaskStatus is the lifecycle status of a task.
type TaskStatus string

// Possible task status values. Only TaskStatusPending and TaskStatusCompleted
// are ever persisted; DUE_TODAY and OVERDUE are derived on read.
const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusDueToday  TaskStatus = "DUE_TODAY"
	TaskStatusOverdue   TaskStatus = "OVERDUE"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// DefaultDueIn is the due date offset applied when a task is created without one.
const DefaultDueIn = 7 * 24 * time.Hour

// dateLayout is the calendar-date form accepted for due dates.
const dateLayout = "2006-01-02"

// Task is a unit of work tracked by the service.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskInput holds the client-supplied fields of a new task.
// Status is deliberately absent: clients cannot set it.
type TaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
}

// TaskPatch holds a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil
}

// NewTask builds a pending task from the input. When no due date is given
// the task is due defaultDueIn after now; a non-positive defaultDueIn falls
// back to DefaultDueIn.
// The ID and store-managed timestamps are assigned on persistence.
func NewTask(in TaskInput, now time.Time, defaultDueIn time.Duration) (*Task, error) {
	if defaultDueIn <= 0 {
		defaultDueIn = DefaultDueIn
	}

	dueDate := now.Add(defaultDueIn)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	task := &Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDate.UTC(),
		Status:      TaskStatusPending,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTitle)
	}
	if t.DueDate.IsZero() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidDueDate)
	}
	if t.Status != TaskStatusPending && t.Status != TaskStatusCompleted {
		return fmt.Errorf("%w: status %q cannot be stored", ErrValidation, t.Status)
	}
	if (t.Status == TaskStatusCompleted) != (t.CompletedAt != nil) {
		return fmt.Errorf("%w: completed_at must be set exactly when completed", ErrValidation)
	}
	return nil
}

// IsCompleted reports whether the task has been completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Complete moves the task to COMPLETED. It is a one-way transition:
// completing an already completed task returns ErrAlreadyCompleted.
func (t *Task) Complete(at time.Time) error {
	if t.IsCompleted() {
		return ErrAlreadyCompleted
	}
	completedAt := at.UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completedAt
	t.UpdatedAt = completedAt
	return nil
}

// Apply copies the non-nil fields of the patch onto the task and
// re-validates it.
func (t *Task) Apply(p TaskPatch) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		description := *p.Description
		t.Description = &description
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate.UTC()
	}
	return t.Validate()
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		description := *t.Description
		c.Description = &description
	}
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}

// ParseTaskID parses a raw identifier. Only positive base-10 integers are valid.
func ParseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// ParseDueDate accepts either a calendar date (2006-01-02), interpreted as
// the start of that day in loc, or an RFC 3339 timestamp.
func ParseDueDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
}
