package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/cache"
	"github.com/phrazzld/taskboard-api/internal/platform/metrics"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/sqlite"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	loc    *time.Location

	// Exactly one of db and gormDB is set, depending on the driver.
	db     *sql.DB
	gormDB *gorm.DB
	redis  *redis.Client

	metrics      *metrics.Metrics
	eventEmitter *events.InMemoryEventEmitter
	taskStore    store.TaskStore
	taskService  service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// Resources acquired before a failure are released before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *application, err error) {
	loc, err := cfg.Tasks.Location()
	if err != nil {
		return nil, err
	}

	app = &application{
		config:  cfg,
		logger:  logger,
		loc:     loc,
		metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			app.cleanup()
			app = nil
		}
	}()

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))
	app.eventEmitter.RegisterHandler(app.metrics.EventHandler())

	app.taskService, err = service.NewTaskService(app.taskStore, logger,
		service.WithLocation(loc),
		service.WithDefaultDueIn(cfg.Tasks.DefaultDueIn()),
		service.WithEventEmitter(app.eventEmitter),
		service.WithErrorObserver(app.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupStore opens the configured backend and, when enabled, wraps it in
// the Redis read-through cache.
func (app *application) setupStore(ctx context.Context) error {
	cfg := app.config

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := setupSQLite(cfg.Database, app.logger)
		if err != nil {
			return err
		}
		app.gormDB = db
		app.taskStore = sqlite.NewSQLiteTaskStore(db, app.logger)
	default:
		db, err := setupPostgres(ctx, cfg.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(db, "up", app.logger); err != nil {
				return err
			}
		}
		app.taskStore = postgres.NewPostgresTaskStore(db, app.logger)
	}

	if !cfg.Cache.Enabled {
		return nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	app.redis = client
	app.taskStore = cache.NewCachedTaskStore(app.taskStore, client, cfg.Cache.TTL(), app.logger, app.metrics)
	app.logger.Info("task cache enabled",
		slog.String("redis_addr", cfg.Cache.RedisAddr),
		slog.Duration("ttl", cfg.Cache.TTL()))
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	if app.gormDB != nil {
		if err := sqlite.Close(app.gormDB); err != nil {
			app.logger.Error("error closing sqlite database", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
