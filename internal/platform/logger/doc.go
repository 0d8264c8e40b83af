// Package logger provides structured logging for the application.
//
// It builds a JSON log/slog logger at the configured level and carries
// request-scoped loggers through context.Context, so stores and services
// can log with the trace ID attached by the HTTP middleware.
package logger
