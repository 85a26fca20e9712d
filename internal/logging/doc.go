// Package logging builds the application slog logger with console and JSON
// handlers, standardized attribute helpers, and the progress emission gate
// used to bound telemetry volume.
package logging
