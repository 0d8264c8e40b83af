package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
	"gorm.io/gorm"
)

// taskRecord is the gorm model of a persisted task.
type taskRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:255;not null"`
	Description *string    `gorm:"type:text"`
	DueDate     time.Time  `gorm:"not null;index"`
	Status      string     `gorm:"size:20;not null;index"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the task model.
func (taskRecord) TableName() string {
	return "tasks"
}

func fromDomain(t *domain.Task) taskRecord {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.UTC(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.CompletedAt != nil {
		at := t.CompletedAt.UTC()
		rec.CompletedAt = &at
	}
	return rec
}

func (r *taskRecord) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.UTC(),
		Status:      domain.TaskStatus(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.CompletedAt != nil {
		at := r.CompletedAt.UTC()
		task.CompletedAt = &at
	}
	return task
}

// mapError translates gorm errors into store errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	default:
		return err
	}
}

// SQLiteTaskStore implements store.TaskStore on top of gorm.
type SQLiteTaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// Ensure SQLiteTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*SQLiteTaskStore)(nil)

// NewSQLiteTaskStore creates a store over a migrated database.
func NewSQLiteTaskStore(db *gorm.DB, logger *slog.Logger) *SQLiteTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_task_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create implements store.TaskStore.Create.
func (s *SQLiteTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return nil, err
	}

	rec := fromDomain(task)
	rec.ID = 0
	now := s.now()
	rec.CreatedAt, rec.UpdatedAt = now, now

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	log.Info("task created successfully", slog.Int64("task_id", rec.ID))
	return rec.toDomain(), nil
}

func (s *SQLiteTaskStore) get(db *gorm.DB, id int64) (*domain.Task, error) {
	var rec taskRecord
	if err := db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, mapError(err)
	}
	return rec.toDomain(), nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *SQLiteTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.get(s.db.WithContext(ctx), id)
	if err != nil && !errors.Is(err, store.ErrTaskNotFound) {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
	}
	return task, err
}

// Update implements store.TaskStore.Update.
func (s *SQLiteTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	updates := map[string]interface{}{"updated_at": s.now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.DueDate != nil {
		updates["due_date"] = patch.DueDate.UTC()
	}

	var updated *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRecord{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return mapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return store.ErrTaskNotFound
		}
		var err error
		updated, err = s.get(tx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, err
	}
	return updated, nil
}

// Complete implements store.TaskStore.Complete with a conditional update,
// so of two concurrent completions exactly one succeeds.
func (s *SQLiteTaskStore) Complete(ctx context.Context, id int64, at time.Time) (*domain.Task, error) {
	at = at.UTC()

	var completed *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRecord{}).
			Where("id = ? AND status <> ?", id, string(domain.TaskStatusCompleted)).
			Updates(map[string]interface{}{
				"status":       string(domain.TaskStatusCompleted),
				"completed_at": at,
				"updated_at":   at,
			})
		if result.Error != nil {
			return mapError(result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&taskRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return mapError(err)
			}
			if count == 0 {
				return store.ErrTaskNotFound
			}
			return store.ErrTaskAlreadyCompleted
		}
		var err error
		completed, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task completed", slog.Int64("task_id", id))
	return completed, nil
}

// Delete implements store.TaskStore.Delete.
func (s *SQLiteTaskStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if result.Error != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", result.Error.Error()),
			slog.Int64("task_id", id))
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// FindAll implements store.TaskStore.FindAll.
func (s *SQLiteTaskStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return s.find(ctx, "find_all", s.db.WithContext(ctx))
}

// Search implements store.TaskStore.Search. Both sides are folded with
// unicode_lower, which Open registers on every connection.
func (s *SQLiteTaskStore) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	pattern := "%" + store.EscapeLike(strings.ToLower(keyword)) + "%"
	q := s.db.WithContext(ctx).Where(
		unicodeLowerFunc+`(title) LIKE ? ESCAPE '\' OR `+
			unicodeLowerFunc+`(COALESCE(description, '')) LIKE ? ESCAPE '\'`,
		pattern, pattern,
	)
	return s.find(ctx, "search", q)
}

func (s *SQLiteTaskStore) find(ctx context.Context, op string, q *gorm.DB) ([]*domain.Task, error) {
	var recs []taskRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", op, "query failed", mapError(err))
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toDomain())
	}
	return tasks, nil
}
