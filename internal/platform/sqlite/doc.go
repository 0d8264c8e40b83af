// Package sqlite provides a gorm-backed SQLite implementation of
// store.TaskStore for single-node deployments and for fast end-to-end
// tests against an in-memory database.
package sqlite
