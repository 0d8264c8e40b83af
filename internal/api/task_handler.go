package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	loc         *time.Location
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler. Calendar-date due dates are
// interpreted as midnight in loc; a nil loc means UTC.
func NewTaskHandler(taskService service.TaskService, loc *time.Location, logger *slog.Logger) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		loc:         loc,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes registers the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/search", h.SearchTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Put("/tasks/{id}/complete", h.CompleteTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
}

// decodeAndValidate reads the JSON body into req and validates it. It writes
// a validation_failed response and returns false on failure.
func (h *TaskHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		HandleAPIError(w, r, apperr.New(apperr.CodeValidationFailed, "decode_request", err), "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, apperr.New(apperr.CodeValidationFailed, "validate_request", err), SanitizeValidationError(err))
		return false
	}
	return true
}

// pathTaskID extracts the task id, writing an invalid_id response on failure.
func (h *TaskHandler) pathTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := getPathTaskID(r)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("invalid task id",
			slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, apperr.New(apperr.CodeInvalidID, "parse_task_id", err), "")
		return 0, false
	}
	return id, true
}

// CreateTask handles POST /api/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	dueDate, err := parseOptionalDueDate(req.DueDate, h.loc)
	if err != nil {
		HandleAPIError(w, r, apperr.New(apperr.CodeValidationFailed, "parse_due_date", err), "")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), domain.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /api/tasks requests
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// SearchTasks handles GET /api/tasks/search?keyword= requests
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.SearchTasks(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	dueDate, err := parseOptionalDueDate(req.DueDate, h.loc)
	if err != nil {
		HandleAPIError(w, r, apperr.New(apperr.CodeValidationFailed, "parse_due_date", err), "")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CompleteTask handles PUT /api/tasks/{id}/complete requests
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
// The response body is the task as it was before deletion.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.DeleteTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task deleted via API",
		slog.Int64("task_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
