package service

import (
	"errors"

	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Operation names carried by *apperr.Error and used as metric labels.
const (
	OpCreateTask   = "create_task"
	OpListTasks    = "list_tasks"
	OpGetTask      = "get_task"
	OpUpdateTask   = "update_task"
	OpCompleteTask = "complete_task"
	OpDeleteTask   = "delete_task"
	OpSearchTasks  = "search_tasks"
)

// ErrorObserver is notified of every failed operation.
type ErrorObserver interface {
	ObserveServiceError(operation string, code apperr.Code)
}

// classifyStoreError picks the code for a store failure. Missing tasks are
// not_found, recognised store errors are db_operation_error, and anything
// else falls back to the operation's own failure code.
func classifyStoreError(err error, fallback apperr.Code) apperr.Code {
	switch {
	case store.IsNotFoundError(err):
		return apperr.CodeNotFound
	case errors.Is(err, store.ErrTaskAlreadyCompleted):
		return apperr.CodeAlreadyCompleted
	case store.IsKnownError(err):
		return apperr.CodeDBOperation
	default:
		return fallback
	}
}

// classifyDomainError maps a domain rule violation to its code, or returns
// fallback for errors the domain layer does not define.
func classifyDomainError(err error, fallback apperr.Code) apperr.Code {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return apperr.CodeInvalidID
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return apperr.CodeAlreadyCompleted
	case errors.Is(err, domain.ErrValidation):
		return apperr.CodeValidationFailed
	default:
		return fallback
	}
}
