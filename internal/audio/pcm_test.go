package audio

import (
	"math"
	"testing"
)

func TestDecodeSamplesNormalizes(t *testing.T) {
	data := EncodeSamples([]float32{0, 0.5, -0.5})
	samples := DecodeSamples(data)
	if len(samples) != 3 {
		t.Fatalf("got %d samples", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("zero sample = %v", samples[0])
	}
	if math.Abs(float64(samples[1]-0.5)) > 1.0/32768 {
		t.Errorf("positive sample = %v", samples[1])
	}
	if math.Abs(float64(samples[2]+0.5)) > 1.0/32768 {
		t.Errorf("negative sample = %v", samples[2])
	}
}

func TestDecodeSamplesRange(t *testing.T) {
	// Extremes of the int16 range stay inside [-1, 1).
	data := []byte{0x00, 0x80, 0xFF, 0x7F}
	samples := DecodeSamples(data)
	if samples[0] != -1.0 {
		t.Errorf("int16 min = %v, want -1", samples[0])
	}
	if samples[1] >= 1.0 || samples[1] < 0.9999 {
		t.Errorf("int16 max = %v", samples[1])
	}
}

func TestDecodeSamplesEmpty(t *testing.T) {
	if got := DecodeSamples(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := DecodeSamples([]byte{0x01}); got != nil {
		t.Fatalf("single byte should yield no samples, got %v", got)
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(16000, 16000); got != 1.0 {
		t.Errorf("Seconds = %v", got)
	}
	if got := Seconds(8000, 16000); got != 0.5 {
		t.Errorf("Seconds = %v", got)
	}
	if got := Seconds(100, 0); got != 0 {
		t.Errorf("Seconds with zero rate = %v", got)
	}
}
