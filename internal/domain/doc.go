// Package domain contains the task entity, its invariants and the rules
// that derive a task's display status from its due date. It has no
// knowledge of storage or transport.
package domain
