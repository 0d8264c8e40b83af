package domain

import (
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	completedAt := now.Add(-time.Hour)

	tests := []struct {
		name string
		task Task
		want TaskStatus
	}{
		{
			name: "due later today",
			task: Task{DueDate: time.Date(2025, 2, 10, 23, 0, 0, 0, time.UTC), Status: TaskStatusPending},
			want: TaskStatusDueToday,
		},
		{
			name: "due earlier today",
			task: Task{DueDate: time.Date(2025, 2, 10, 1, 0, 0, 0, time.UTC), Status: TaskStatusPending},
			want: TaskStatusDueToday,
		},
		{
			name: "due yesterday",
			task: Task{DueDate: time.Date(2025, 2, 9, 12, 0, 0, 0, time.UTC), Status: TaskStatusPending},
			want: TaskStatusOverdue,
		},
		{
			name: "due tomorrow",
			task: Task{DueDate: time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC), Status: TaskStatusPending},
			want: TaskStatusPending,
		},
		{
			name: "completed wins over overdue",
			task: Task{
				DueDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Status:      TaskStatusCompleted,
				CompletedAt: &completedAt,
			},
			want: TaskStatusCompleted,
		},
		{
			name: "completed wins over due today",
			task: Task{DueDate: now, Status: TaskStatusCompleted, CompletedAt: &completedAt},
			want: TaskStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveStatus(&tt.task, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_ReferenceZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2025-02-10 20:00 UTC is already 2025-02-11 in Tokyo.
	now := time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)
	task := &Task{DueDate: time.Date(2025, 2, 10, 22, 0, 0, 0, time.UTC), Status: TaskStatusPending}

	inUTC, err := DeriveStatus(task, now)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDueToday, inUTC)

	inTokyo, err := DeriveStatus(task, now.In(tokyo))
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDueToday, inTokyo, "22:00 UTC is 07:00 next day in Tokyo, same as now")

	yesterdayInTokyo := &Task{DueDate: time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC), Status: TaskStatusPending}
	got, err := DeriveStatus(yesterdayInTokyo, now.In(tokyo))
	require.NoError(t, err)
	assert.Equal(t, TaskStatusOverdue, got)
}

func TestDeriveStatus_IsDeterministic(t *testing.T) {
	now := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	task := &Task{DueDate: now.Add(-48 * time.Hour), Status: TaskStatusPending}
	before := *task

	first, err := DeriveStatus(task, now)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := DeriveStatus(task, now)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, before, *task, "derivation must not mutate the task")
}

func TestDeriveStatus_NeverCompletedWithoutTimestamp(t *testing.T) {
	now := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{-72 * time.Hour, 0, 72 * time.Hour} {
		task := &Task{DueDate: now.Add(offset), Status: TaskStatusPending}
		got, err := DeriveStatus(task, now)
		require.NoError(t, err)
		assert.NotEqual(t, TaskStatusCompleted, got)
	}
}

func TestDeriveStatus_MissingDueDate(t *testing.T) {
	_, err := DeriveStatus(&Task{Status: TaskStatusPending}, time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeStatusCalculationFailed))
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestDeriveStatus_NilTask(t *testing.T) {
	status, err := DeriveStatus(nil, time.Now())
	require.Error(t, err)
	assert.Empty(t, status)
	assert.True(t, apperr.IsCode(err, apperr.CodeStatusCalculationFailed))
	assert.ErrorIs(t, err, ErrNilTask)
}
