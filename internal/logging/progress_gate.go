package logging

import "math"

// ProgressGate suppresses repetitive progress events, emitting only when the
// rounded integer percentage changes. Decode callbacks fire per chunk, which
// on fast machines is far more often than a consumer wants to hear about.
type ProgressGate struct {
	lastPercent int
}

// NewProgressGate constructs a gate that has not emitted yet.
func NewProgressGate() *ProgressGate {
	return &ProgressGate{lastPercent: -1}
}

// ShouldEmit reports whether a progress event at the given percent should be
// forwarded. Negative percent means "unknown" and always emits once per
// change to zero or above.
func (g *ProgressGate) ShouldEmit(percent float64) bool {
	if g == nil {
		return true
	}
	rounded := -1
	if percent >= 0 {
		rounded = int(math.Round(percent))
		if rounded > 100 {
			rounded = 100
		}
	}
	if rounded == g.lastPercent {
		return false
	}
	g.lastPercent = rounded
	return true
}

// Reset clears the gate state (e.g. when a new job starts).
func (g *ProgressGate) Reset() {
	if g == nil {
		return
	}
	g.lastPercent = -1
}
