package store

import (
	"context"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Implementations store only the PENDING and COMPLETED statuses;
// derived statuses never reach the store.
type TaskStore interface {
	// Create persists a new task and returns it with the store-assigned ID
	// and timestamps populated.
	// Returns ErrInvalidEntity if the task violates a storage constraint.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies a partial update and returns the resulting task.
	// Only non-nil fields of the patch are written; updated_at is refreshed.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Complete marks a task completed at the given time in a single
	// conditional write. Returns ErrTaskNotFound if the task does not exist
	// and ErrTaskAlreadyCompleted if it was already completed.
	Complete(ctx context.Context, id int64, at time.Time) (*domain.Task, error)

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// FindAll returns every task ordered by ID.
	// Returns an empty slice if there are none.
	FindAll(ctx context.Context) ([]*domain.Task, error)

	// Search returns tasks whose title or description contains the keyword,
	// compared case-insensitively. The keyword is matched literally.
	Search(ctx context.Context, keyword string) ([]*domain.Task, error)
}
