// Package cache provides a Redis read-through cache in front of any
// store.TaskStore. Single-task reads are served from Redis when possible and
// mutations invalidate the cached entry. Redis failures degrade to direct
// store access and are never returned to callers.
package cache
