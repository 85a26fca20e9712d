package logging

import "testing"

func TestProgressGateEmitsOnIntegerChange(t *testing.T) {
	gate := NewProgressGate()
	if !gate.ShouldEmit(0) {
		t.Fatal("first emission should pass")
	}
	if gate.ShouldEmit(0.2) {
		t.Fatal("0.2 rounds to 0, should suppress")
	}
	if gate.ShouldEmit(0.4) {
		t.Fatal("0.4 rounds to 0, should suppress")
	}
	if !gate.ShouldEmit(0.6) {
		t.Fatal("0.6 rounds to 1, should emit")
	}
	if !gate.ShouldEmit(2.0) {
		t.Fatal("2.0 should emit")
	}
	if gate.ShouldEmit(2.3) {
		t.Fatal("2.3 rounds to 2, should suppress")
	}
}

func TestProgressGateClampsAboveHundred(t *testing.T) {
	gate := NewProgressGate()
	if !gate.ShouldEmit(100) {
		t.Fatal("100 should emit")
	}
	if gate.ShouldEmit(100.7) {
		t.Fatal("values above 100 clamp and should suppress")
	}
}

func TestProgressGateUnknownPercent(t *testing.T) {
	gate := NewProgressGate()
	if !gate.ShouldEmit(-1) {
		t.Fatal("unknown percent should emit once")
	}
	if gate.ShouldEmit(-5) {
		t.Fatal("repeated unknown percent should suppress")
	}
	if !gate.ShouldEmit(0) {
		t.Fatal("transition to known percent should emit")
	}
}

func TestProgressGateReset(t *testing.T) {
	gate := NewProgressGate()
	gate.ShouldEmit(50)
	gate.Reset()
	if !gate.ShouldEmit(50) {
		t.Fatal("reset should allow re-emission")
	}
}

func TestNilGateAlwaysEmits(t *testing.T) {
	var gate *ProgressGate
	if !gate.ShouldEmit(10) {
		t.Fatal("nil gate must not suppress")
	}
	gate.Reset()
}
