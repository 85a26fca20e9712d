// Package pipeline drives one transcription end to end: decode process,
// sample windowing, speech detection, recognition, cue merging, and the
// final subtitle write. Output reaches disk only after the decoder exits
// cleanly; cancellation and tool failures leave no file behind.
package pipeline
