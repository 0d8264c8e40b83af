// Package postgres provides the PostgreSQL implementation of the task store
// defined in internal/store, together with the embedded schema migrations.
// It handles query execution, constraint error mapping and the conversion
// between rows and domain tasks.
package postgres
