package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const taskColumns = `id, title, description, due_date, status, completed_at, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.DueDate,
		&status,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if description.Valid {
		task.Description = &description.String
	}
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		task.CompletedAt = &at
	}
	task.DueDate = task.DueDate.UTC()
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	query := `
		INSERT INTO tasks (title, description, due_date, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + taskColumns

	created, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Status),
		task.CompletedAt,
		now,
	))
	if err != nil {
		level := slog.LevelError
		if IsCheckConstraintViolation(err) {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "failed to create task", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Info("task created successfully", slog.Int64("task_id", created.ID))
	return created, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update.
// Nil patch fields bind as NULL and COALESCE keeps the stored value.
func (s *PostgresTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			due_date = COALESCE($4, due_date),
			updated_at = $5
		WHERE id = $1
		RETURNING ` + taskColumns

	var dueDate *time.Time
	if patch.DueDate != nil {
		d := patch.DueDate.UTC()
		dueDate = &d
	}

	task, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		id,
		patch.Title,
		patch.Description,
		dueDate,
		s.now(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	log.Debug("task updated", slog.Int64("task_id", id))
	return task, nil
}

// Complete implements store.TaskStore.Complete. The status guard in the
// WHERE clause makes completion a single conditional write, so of two
// concurrent completions exactly one succeeds.
func (s *PostgresTaskStore) Complete(ctx context.Context, id int64, at time.Time) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = 'COMPLETED', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status <> 'COMPLETED'
		RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, at.UTC()))
	if err == nil {
		log.Info("task completed", slog.Int64("task_id", id))
		return task, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to complete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	// No row matched: either the task is missing or it was already completed.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return nil, MapError(err)
	}
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	return nil, store.ErrTaskAlreadyCompleted
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// FindAll implements store.TaskStore.FindAll.
func (s *PostgresTaskStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return s.query(ctx, "find_all", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

// Search implements store.TaskStore.Search.
func (s *PostgresTaskStore) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	pattern := "%" + store.EscapeLike(keyword) + "%"
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		ORDER BY id`
	return s.query(ctx, "search", query, pattern)
}

func (s *PostgresTaskStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", op, "query failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", op, "row iteration failed", MapError(err))
	}

	log.Debug("tasks queried", slog.String("operation", op), slog.Int("count", len(tasks)))
	return tasks, nil
}
