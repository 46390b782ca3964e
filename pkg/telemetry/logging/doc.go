// Package logging builds the process-wide structured logger.
//
// It wraps log/slog with level and format parsing so configuration can
// select json, text, or console output at debug through error levels.
// Components obtain scoped loggers from the installed default:
//
//	logger := slog.Default().With("component", "audit.queue")
package logging
