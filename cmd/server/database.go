package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/sqlite"
	"gorm.io/gorm"
)

// setupPostgres opens the PostgreSQL pool and verifies connectivity.
func setupPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", slog.String("driver", "postgres"))
	return db, nil
}

// setupSQLite opens the SQLite database file and migrates it.
func setupSQLite(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	db, err := sqlite.Open(cfg.SQLitePath, logger.Enabled(context.Background(), slog.LevelDebug))
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established",
		slog.String("driver", "sqlite"),
		slog.String("path", cfg.SQLitePath))
	return db, nil
}

// runMigrations executes a goose command against the configured database.
// SQLite schemas are managed by gorm, so only "up" is meaningful there.
func runMigrations(cfg *config.Config, logger *slog.Logger, command string) error {
	ctx := context.Background()

	switch cfg.Database.Driver {
	case "sqlite":
		if command != "up" {
			return fmt.Errorf("migration command %q is only supported for postgres", command)
		}
		db, err := setupSQLite(cfg.Database, logger)
		if err != nil {
			return err
		}
		return sqlite.Close(db)
	default:
		db, err := setupPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", slog.String("error", err.Error()))
			}
		}()
		return postgres.Migrate(db, command, logger)
	}
}
