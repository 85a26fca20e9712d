package asr

import (
	"strings"

	"substream/internal/vad"
)

// Stream accepts samples for a single utterance and produces its transcript.
// A stream is not reusable; Close must be called exactly once, even when
// Decode fails.
type Stream interface {
	AcceptWaveform(sampleRate int, samples []float32) error
	Decode() error
	Text() (string, error)
	Close() error
}

// Recognizer creates decode streams against a loaded model. Implementations
// are safe for use from one pipeline goroutine at a time.
type Recognizer interface {
	NewStream() (Stream, error)
	Close() error
}

// Transcribe runs one detected region through the recognizer and returns the
// trimmed transcript. An empty transcript means the region carried no
// recognizable speech and the caller should drop it.
func Transcribe(rec Recognizer, sampleRate int, region vad.Region) (string, error) {
	stream, err := rec.NewStream()
	if err != nil {
		return "", err
	}
	defer stream.Close()

	if err := stream.AcceptWaveform(sampleRate, region.Samples); err != nil {
		return "", err
	}
	if err := stream.Decode(); err != nil {
		return "", err
	}
	text, err := stream.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
