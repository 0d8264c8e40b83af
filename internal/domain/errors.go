// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when a task ID is malformed or not positive.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyTitle is returned when a task title is empty or only whitespace.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidDueDate is returned when a due date is missing or cannot be parsed.
	ErrInvalidDueDate = errors.New("invalid due date")

	// ErrNilTask is returned when an operation receives a nil task.
	ErrNilTask = errors.New("task is nil")

	// ErrAlreadyCompleted is returned when completing a task that is already completed.
	ErrAlreadyCompleted = errors.New("task already completed")
)
