// Package logging constructs slog loggers with console and JSON handlers and
// carries the standardized attribute keys used across the pipeline.
package logging
