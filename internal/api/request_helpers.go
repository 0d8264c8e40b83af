package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// getPathTaskID extracts the task id from the URL path.
// The returned error wraps domain.ErrInvalidID.
func getPathTaskID(r *http.Request) (int64, error) {
	return domain.ParseTaskID(chi.URLParam(r, "id"))
}

// parseOptionalDueDate parses a due date if one was supplied.
func parseOptionalDueDate(raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	due, err := domain.ParseDueDate(*raw, loc)
	if err != nil {
		return nil, err
	}
	return &due, nil
}
