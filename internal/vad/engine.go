package vad

// Region is a contiguous span of samples the detector judged to be speech.
// StartSample is the absolute sample index in whole-stream coordinates.
// Ownership of Samples transfers to the caller when the region is popped
// from the engine queue.
type Region struct {
	StartSample int64
	Samples     []float32
}

// Engine is the voice-activity capability contract. Implementations keep an
// internal FIFO of detected regions that callers drain via Empty/Front/Pop.
type Engine interface {
	// AcceptWaveform feeds one fixed-size window of samples.
	AcceptWaveform(window []float32) error
	// Flush forces emission of any trailing in-progress region. Called
	// exactly once at end-of-stream.
	Flush() error
	// Empty reports whether the region queue has no entries.
	Empty() bool
	// Front returns the oldest queued region without removing it.
	Front() Region
	// Pop removes the oldest queued region.
	Pop()
	// Close releases engine resources. Safe to call more than once.
	Close() error
}
