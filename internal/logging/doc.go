// Package logging builds the slog loggers used across descant.
//
// It provides console and JSON handlers, typed attribute helpers, component
// loggers, and context-derived fields (item ID, stage, correlation ID) so
// every stage logs in a consistent shape without process-wide globals.
package logging
