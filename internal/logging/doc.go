// Package logging builds slog loggers for the server and CLI.
//
// It provides console and JSON handlers selected by configuration, optional
// log-file tee under the configured log directory, typed attribute helpers,
// and standardized field names so job identifiers and components are queryable
// across the codebase.
package logging
