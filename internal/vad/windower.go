package vad

import (
	"context"
	"fmt"

	"substream/internal/audio"
)

// Windower owns the push-then-drain cycle between the sample ring and the
// detector engine.
type Windower struct {
	ring       *audio.Ring
	engine     Engine
	windowSize int
}

// NewWindower wires a ring and an engine together with the given window
// size (512 samples in production).
func NewWindower(ring *audio.Ring, engine Engine, windowSize int) *Windower {
	if windowSize <= 0 {
		windowSize = 512
	}
	return &Windower{ring: ring, engine: engine, windowSize: windowSize}
}

// PushPCM converts one chunk of s16le bytes and runs the windowing loop to
// quiescence. The chunk must not exceed the ring's free space; the decode
// reader sizes its chunks to one window so this holds by construction.
func (w *Windower) PushPCM(ctx context.Context, data []byte) error {
	return w.PushSamples(ctx, audio.DecodeSamples(data))
}

// PushSamples appends decoded samples and drains full windows into the
// engine until fewer than one window remains buffered.
func (w *Windower) PushSamples(ctx context.Context, samples []float32) error {
	if err := w.ring.Push(samples); err != nil {
		return err
	}
	return w.drain(ctx)
}

// Finalize drains any remaining full windows and flushes the engine once so
// a trailing in-progress region is emitted. Remaining sub-window samples are
// discarded; at 16 kHz that is under 32 ms of tail audio.
func (w *Windower) Finalize(ctx context.Context) error {
	if err := w.drain(ctx); err != nil {
		return err
	}
	if err := w.engine.Flush(); err != nil {
		return fmt.Errorf("flush detector: %w", err)
	}
	return nil
}

func (w *Windower) drain(ctx context.Context) error {
	for w.ring.Size() >= w.windowSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		window, err := w.ring.View(w.windowSize)
		if err != nil {
			return err
		}
		if err := w.engine.AcceptWaveform(window); err != nil {
			return fmt.Errorf("accept waveform: %w", err)
		}
		if err := w.ring.Pop(w.windowSize); err != nil {
			return err
		}
	}
	return nil
}
