package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_Status(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeInvalidID, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyCompleted, http.StatusBadRequest},
		{CodeCreationFailed, http.StatusInternalServerError},
		{CodeUpdateFailed, http.StatusInternalServerError},
		{CodeDeletionFailed, http.StatusInternalServerError},
		{CodeCompletionFailed, http.StatusInternalServerError},
		{CodeFetchFailed, http.StatusInternalServerError},
		{CodeStatusCalculationFailed, http.StatusInternalServerError},
		{CodeDBOperation, http.StatusNotFound},
		{CodeKeywordRequired, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{Code("something_else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.code.Status())
		})
	}
}

func TestCodes_AllHaveStatusAndMessage(t *testing.T) {
	for _, code := range Codes() {
		_, hasStatus := codeStatus[code]
		_, hasMessage := codeMessage[code]
		assert.True(t, hasStatus, "code %s has no status", code)
		assert.True(t, hasMessage, "code %s has no message", code)
	}
	assert.Len(t, codeStatus, len(Codes()))
}

func TestError_Chain(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(CodeFetchFailed, "list_tasks", cause)

	assert.Equal(t, "list_tasks: fetch_failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status())

	wrapped := fmt.Errorf("handler: %w", err)
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeFetchFailed, got.Code)
	assert.Equal(t, CodeFetchFailed, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeFetchFailed))
	assert.False(t, IsCode(wrapped, CodeNotFound))
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "get_task", nil)

	assert.True(t, errors.Is(err, New(CodeNotFound, "other_op", nil)))
	assert.False(t, errors.Is(err, New(CodeInvalidID, "get_task", nil)))
	assert.Equal(t, "get_task: not_found", err.Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))

	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
