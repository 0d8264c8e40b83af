// Package events provides task lifecycle events and a synchronous in-memory
// emitter.
//
// The task service emits an event after every successful mutation. Handlers
// registered on the emitter (metrics, audit logging) observe those events
// without the service knowing about them.
package events
