// Package watch monitors a drop directory and enqueues transcription jobs
// for new media files once their size stops changing. Files that already
// have a sibling subtitle are skipped silently.
package watch
