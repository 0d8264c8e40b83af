// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the task service, translating HTTP concerns to service operations.
//
// Handlers never interpret a service error beyond its apperr code: the code
// selects the HTTP status and the client-safe message, and the error itself
// is only logged.
package api
