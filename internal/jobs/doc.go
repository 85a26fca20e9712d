// Package jobs supervises transcription and translation work. Each kind
// has its own FIFO queue and a single worker, so one transcription and one
// translation may run concurrently but jobs of the same kind never overlap.
// Every status and progress change is published on an in-memory event bus
// that IPC clients poll by sequence number.
package jobs
