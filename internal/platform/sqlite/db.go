package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// driverName is the sqlite3 driver with the Unicode-aware functions below
// registered on every connection.
const driverName = "sqlite3_taskboard"

// unicodeLowerFunc folds case for all of Unicode. The built-in LOWER only
// folds ASCII letters.
const unicodeLowerFunc = "unicode_lower"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(unicodeLowerFunc, strings.ToLower, true)
		},
	})
}

// Open connects to the SQLite database at path (":memory:" for a private
// in-memory database) and migrates the schema.
//
// The pool is limited to one connection: SQLite serialises writers anyway,
// and an in-memory database exists only on the connection that created it.
func Open(path string, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: driverName, DSN: path}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tasks table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
