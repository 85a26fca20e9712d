package vad

import "math"

// EnergyGateOptions tunes the built-in energy detector.
type EnergyGateOptions struct {
	// Threshold is the RMS level at or above which a window counts as speech.
	Threshold float64
	// MaxSilenceWindows is how many consecutive sub-threshold windows a
	// region tolerates before it is closed.
	MaxSilenceWindows int
	// MinSpeechSamples discards regions shorter than this after trimming.
	MinSpeechSamples int
}

// DefaultEnergyGateOptions returns the tuning used by the daemon: ~32 ms
// windows at 16 kHz, half a second of hangover, regions under 100 ms dropped.
func DefaultEnergyGateOptions() EnergyGateOptions {
	return EnergyGateOptions{
		Threshold:         0.015,
		MaxSilenceWindows: 15,
		MinSpeechSamples:  1600,
	}
}

// EnergyGate is a self-contained Engine that classifies windows by RMS
// energy. It exists so the pipeline runs and tests without a native model;
// a neural detector plugs in behind the same Engine interface.
type EnergyGate struct {
	opts   EnergyGateOptions
	cursor int64 // absolute sample index of the next window

	inSpeech        bool
	regionStart     int64
	pending         []float32
	trailingSilence int
	silenceRun      int

	queue []Region
}

// NewEnergyGate constructs an energy detector. Zero-valued options fall back
// to the defaults.
func NewEnergyGate(opts EnergyGateOptions) *EnergyGate {
	def := DefaultEnergyGateOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.MaxSilenceWindows <= 0 {
		opts.MaxSilenceWindows = def.MaxSilenceWindows
	}
	if opts.MinSpeechSamples <= 0 {
		opts.MinSpeechSamples = def.MinSpeechSamples
	}
	return &EnergyGate{opts: opts}
}

// AcceptWaveform classifies one window and updates the open region, closing
// it once the silence hangover is exhausted.
func (g *EnergyGate) AcceptWaveform(window []float32) error {
	start := g.cursor
	g.cursor += int64(len(window))
	if len(window) == 0 {
		return nil
	}

	speech := rms(window) >= g.opts.Threshold
	switch {
	case speech && !g.inSpeech:
		g.inSpeech = true
		g.regionStart = start
		g.pending = append(g.pending[:0:0], window...)
		g.trailingSilence = 0
		g.silenceRun = 0
	case speech && g.inSpeech:
		g.pending = append(g.pending, window...)
		g.trailingSilence = 0
		g.silenceRun = 0
	case !speech && g.inSpeech:
		g.silenceRun++
		if g.silenceRun > g.opts.MaxSilenceWindows {
			g.closeRegion()
			return nil
		}
		// Hangover: keep the silence so timing stays continuous, but
		// remember it for trimming if the region closes here.
		g.pending = append(g.pending, window...)
		g.trailingSilence += len(window)
	}
	return nil
}

// Flush closes any in-progress region. Called once at end-of-stream.
func (g *EnergyGate) Flush() error {
	if g.inSpeech {
		g.closeRegion()
	}
	return nil
}

// Empty reports whether the region queue is drained.
func (g *EnergyGate) Empty() bool { return len(g.queue) == 0 }

// Front returns the oldest queued region.
func (g *EnergyGate) Front() Region {
	if len(g.queue) == 0 {
		return Region{}
	}
	return g.queue[0]
}

// Pop removes the oldest queued region.
func (g *EnergyGate) Pop() {
	if len(g.queue) > 0 {
		g.queue = g.queue[1:]
	}
}

// Close discards all detector state.
func (g *EnergyGate) Close() error {
	g.pending = nil
	g.queue = nil
	g.inSpeech = false
	return nil
}

func (g *EnergyGate) closeRegion() {
	samples := g.pending[:len(g.pending)-g.trailingSilence]
	if len(samples) >= g.opts.MinSpeechSamples {
		region := Region{StartSample: g.regionStart, Samples: append([]float32(nil), samples...)}
		g.queue = append(g.queue, region)
	}
	g.pending = g.pending[:0]
	g.inSpeech = false
	g.trailingSilence = 0
	g.silenceRun = 0
}

func rms(window []float32) float64 {
	var sum float64
	for _, s := range window {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(window)))
}
