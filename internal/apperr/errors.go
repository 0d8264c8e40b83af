// Package apperr defines the closed set of error codes returned by the task
// service, together with the HTTP status class each code maps to.
//
// Every failure leaving the service layer is an *Error carrying one of the
// codes below. The API layer never interprets an error beyond its code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure condition. Codes are stable strings and are
// returned verbatim to API clients.
type Code string

const (
	// CodeInvalidID indicates the task identifier is not a valid positive integer.
	CodeInvalidID Code = "invalid_id"

	// CodeNotFound indicates no task exists with the given identifier.
	CodeNotFound Code = "not_found"

	// CodeAlreadyCompleted indicates completion was requested for a completed task.
	CodeAlreadyCompleted Code = "already_completed"

	// CodeCreationFailed indicates an unexpected failure while creating a task.
	CodeCreationFailed Code = "creation_failed"

	// CodeUpdateFailed indicates an unexpected failure while updating a task.
	CodeUpdateFailed Code = "update_failed"

	// CodeDeletionFailed indicates an unexpected failure while deleting a task.
	CodeDeletionFailed Code = "deletion_failed"

	// CodeCompletionFailed indicates an unexpected failure while completing a task.
	CodeCompletionFailed Code = "completion_failed"

	// CodeFetchFailed indicates an unexpected failure while reading tasks.
	CodeFetchFailed Code = "fetch_failed"

	// CodeStatusCalculationFailed indicates a task's due date could not be
	// interpreted while deriving its status.
	CodeStatusCalculationFailed Code = "status_calculation_failed"

	// CodeDBOperation indicates the store reported a known constraint or
	// lookup failure.
	CodeDBOperation Code = "db_operation_error"

	// CodeKeywordRequired indicates a search was requested without a keyword.
	CodeKeywordRequired Code = "keyword_required"

	// CodeValidationFailed indicates the request payload failed input validation.
	CodeValidationFailed Code = "validation_failed"
)

// codeStatus is the single source of truth for the status class of each code.
var codeStatus = map[Code]int{
	CodeInvalidID:               http.StatusBadRequest,
	CodeNotFound:                http.StatusNotFound,
	CodeAlreadyCompleted:        http.StatusBadRequest,
	CodeCreationFailed:          http.StatusInternalServerError,
	CodeUpdateFailed:            http.StatusInternalServerError,
	CodeDeletionFailed:          http.StatusInternalServerError,
	CodeCompletionFailed:        http.StatusInternalServerError,
	CodeFetchFailed:             http.StatusInternalServerError,
	CodeStatusCalculationFailed: http.StatusInternalServerError,
	CodeDBOperation:             http.StatusNotFound,
	CodeKeywordRequired:         http.StatusBadRequest,
	CodeValidationFailed:        http.StatusBadRequest,
}

var codeMessage = map[Code]string{
	CodeInvalidID:               "Invalid task ID",
	CodeNotFound:                "Task not found",
	CodeAlreadyCompleted:        "Task is already completed",
	CodeCreationFailed:          "Failed to create task",
	CodeUpdateFailed:            "Failed to update task",
	CodeDeletionFailed:          "Failed to delete task",
	CodeCompletionFailed:        "Failed to complete task",
	CodeFetchFailed:             "Failed to fetch tasks",
	CodeStatusCalculationFailed: "Failed to calculate task status",
	CodeDBOperation:             "Error while performing database operation",
	CodeKeywordRequired:         "Keyword is required for search",
	CodeValidationFailed:        "Validation error",
}

// Codes returns every defined code.
func Codes() []Code {
	return []Code{
		CodeInvalidID,
		CodeNotFound,
		CodeAlreadyCompleted,
		CodeCreationFailed,
		CodeUpdateFailed,
		CodeDeletionFailed,
		CodeCompletionFailed,
		CodeFetchFailed,
		CodeStatusCalculationFailed,
		CodeDBOperation,
		CodeKeywordRequired,
		CodeValidationFailed,
	}
}

// Status returns the HTTP status class for the code.
// Unknown codes map to 500.
func (c Code) Status() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Message returns a client-safe description of the code.
func (c Code) Message() string {
	if msg, ok := codeMessage[c]; ok {
		return msg
	}
	return "An unexpected error occurred"
}

// Error is the typed failure returned by every service operation.
type Error struct {
	// Code classifies the failure.
	Code Code
	// Op is the operation that failed (e.g. "complete_task").
	Op string
	// Err is the underlying cause, if any. It is logged, never shown to clients.
	Err error
}

// New creates an *Error for the given code and operation.
func New(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the wrapped cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Status returns the HTTP status class of the error's code.
func (e *Error) Status() int {
	return e.Code.Status()
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
