package vad

import (
	"testing"
)

const testWindow = 512

func speechWindow(level float32) []float32 {
	w := make([]float32, testWindow)
	for i := range w {
		if i%2 == 0 {
			w[i] = level
		} else {
			w[i] = -level
		}
	}
	return w
}

func silenceWindow() []float32 {
	return make([]float32, testWindow)
}

func feedWindows(t *testing.T, g *EnergyGate, windows ...[]float32) {
	t.Helper()
	for _, w := range windows {
		if err := g.AcceptWaveform(w); err != nil {
			t.Fatalf("AcceptWaveform: %v", err)
		}
	}
}

func TestEnergyGateDetectsRegion(t *testing.T) {
	g := NewEnergyGate(EnergyGateOptions{MaxSilenceWindows: 2, MinSpeechSamples: testWindow})

	feedWindows(t, g, silenceWindow(), silenceWindow())
	for i := 0; i < 10; i++ {
		feedWindows(t, g, speechWindow(0.2))
	}
	// Exceed the hangover to close the region.
	feedWindows(t, g, silenceWindow(), silenceWindow(), silenceWindow())

	if g.Empty() {
		t.Fatal("expected a detected region")
	}
	r := g.Front()
	if r.StartSample != 2*testWindow {
		t.Errorf("StartSample = %d, want %d", r.StartSample, 2*testWindow)
	}
	if len(r.Samples) != 10*testWindow {
		t.Errorf("region length = %d, want %d (trailing silence trimmed)", len(r.Samples), 10*testWindow)
	}
	g.Pop()
	if !g.Empty() {
		t.Error("queue should be empty after Pop")
	}
}

func TestEnergyGateHangoverBridgesShortPause(t *testing.T) {
	g := NewEnergyGate(EnergyGateOptions{MaxSilenceWindows: 3, MinSpeechSamples: testWindow})

	feedWindows(t, g, speechWindow(0.2), speechWindow(0.2))
	// Two silent windows: inside the hangover, region stays open.
	feedWindows(t, g, silenceWindow(), silenceWindow())
	feedWindows(t, g, speechWindow(0.2), speechWindow(0.2))
	if err := g.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if g.Empty() {
		t.Fatal("expected one bridged region")
	}
	r := g.Front()
	if len(r.Samples) != 6*testWindow {
		t.Errorf("region length = %d, want %d (silence kept for continuity)", len(r.Samples), 6*testWindow)
	}
	g.Pop()
	if !g.Empty() {
		t.Error("expected exactly one region")
	}
}

func TestEnergyGateFlushEmitsOpenRegion(t *testing.T) {
	g := NewEnergyGate(EnergyGateOptions{MinSpeechSamples: testWindow})
	feedWindows(t, g, speechWindow(0.2), speechWindow(0.2))
	if !g.Empty() {
		t.Fatal("region must not close before flush")
	}
	if err := g.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if g.Empty() {
		t.Fatal("flush should emit the in-progress region")
	}
}

func TestEnergyGateDropsShortBurst(t *testing.T) {
	g := NewEnergyGate(EnergyGateOptions{MaxSilenceWindows: 1, MinSpeechSamples: 4 * testWindow})
	feedWindows(t, g, speechWindow(0.2))
	feedWindows(t, g, silenceWindow(), silenceWindow())
	if err := g.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !g.Empty() {
		t.Error("sub-minimum burst should be discarded")
	}
}

func TestEnergyGateTrimsTrailingSilence(t *testing.T) {
	g := NewEnergyGate(EnergyGateOptions{MaxSilenceWindows: 5, MinSpeechSamples: testWindow})
	feedWindows(t, g, speechWindow(0.2), speechWindow(0.2))
	feedWindows(t, g, silenceWindow(), silenceWindow())
	if err := g.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	r := g.Front()
	if len(r.Samples) != 2*testWindow {
		t.Errorf("region length = %d, want %d", len(r.Samples), 2*testWindow)
	}
}
