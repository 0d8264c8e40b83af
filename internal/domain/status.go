package domain

import (
	"time"

	"github.com/phrazzld/taskboard-api/internal/apperr"
)

// DeriveStatus computes the display status of a task at now. The calendar
// comparison happens in now's location, so callers choose the reference
// time zone by converting now beforehand.
//
// The checks run in a fixed order: completion wins over any date logic,
// then a due date falling on today, then a due date already past.
// A nil task fails with status_calculation_failed.
func DeriveStatus(t *Task, now time.Time) (TaskStatus, error) {
	if t == nil {
		return "", apperr.New(apperr.CodeStatusCalculationFailed, "derive_status", ErrNilTask)
	}
	if t.Status == TaskStatusCompleted {
		return TaskStatusCompleted, nil
	}

	if t.DueDate.IsZero() {
		return "", apperr.New(apperr.CodeStatusCalculationFailed, "derive_status", ErrInvalidDueDate)
	}

	due := startOfDay(t.DueDate.In(now.Location()))
	today := startOfDay(now)

	if due.Equal(today) {
		return TaskStatusDueToday, nil
	}
	if due.Before(now) {
		return TaskStatusOverdue, nil
	}
	return TaskStatusPending, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
