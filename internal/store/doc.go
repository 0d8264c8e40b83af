// Package store defines interfaces for task persistence and the errors
// every implementation returns. Business rules stay independent of the
// database technology behind them.
package store
