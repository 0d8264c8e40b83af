package api

import (
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// CreateTaskRequest defines the payload for creating a task.
// There is no status field; new tasks always start out pending.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`

	// DueDate is a calendar date (2006-01-02) or an RFC 3339 timestamp.
	DueDate *string `json:"due_date" validate:"omitempty,due_date"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields keep their stored value.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string `json:"due_date"    validate:"omitempty,due_date"`
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      string(task.Status),
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
