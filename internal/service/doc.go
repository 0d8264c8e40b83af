// Package service contains the task lifecycle use cases. It orchestrates
// the domain model and a store.TaskStore to create, read, update, complete,
// delete and search tasks.
//
// Every operation returns (value, error). On failure the value is nil and
// the error is an *apperr.Error whose code selects the HTTP status class;
// callers branch on apperr.CodeOf rather than on the error text.
//
// Store failures are split in two: errors the store recognises
// (store.IsKnownError) become db_operation_error, anything else becomes the
// operation's *_failed code. Not-found lookups are reported as not_found.
//
// Successful mutations publish a lifecycle event through an optional
// events.EventEmitter. Emission happens after the store has committed, so a
// failing handler is logged and never changes the operation's result.
package service
