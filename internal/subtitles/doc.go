// Package subtitles models time-coded cues, merges adjacent fragments into
// readable lines, and renders SubRip (.srt) output. Files are written
// atomically so a half-finished transcription never leaves a partial
// subtitle on disk.
package subtitles
