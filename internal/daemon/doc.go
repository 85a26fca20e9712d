// Package daemon assembles the long-running service: single-instance lock,
// job supervisor, watch folder, and the wiring from job records to the
// transcription pipeline and translation client.
package daemon
