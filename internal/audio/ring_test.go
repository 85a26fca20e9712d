package audio

import (
	"errors"
	"math/rand"
	"testing"
)

func TestRingPushPopAccounting(t *testing.T) {
	r := NewRing(1024)
	rng := rand.New(rand.NewSource(7))

	pushed, popped := 0, 0
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			n := rng.Intn(64)
			chunk := make([]float32, n)
			if pushed-popped+n <= r.Capacity() {
				if err := r.Push(chunk); err != nil {
					t.Fatalf("push %d: %v", n, err)
				}
				pushed += n
			} else if err := r.Push(chunk); n > 0 && !errors.Is(err, ErrOverflow) {
				t.Fatalf("expected overflow, got %v", err)
			}
		} else {
			n := rng.Intn(r.Size() + 1)
			if err := r.Pop(n); err != nil {
				t.Fatalf("pop %d of %d: %v", n, r.Size(), err)
			}
			popped += n
		}
		if r.Size() != pushed-popped {
			t.Fatalf("size = %d, want %d", r.Size(), pushed-popped)
		}
		if r.Size() < 0 || r.Size() > r.Capacity() {
			t.Fatalf("size %d outside [0, %d]", r.Size(), r.Capacity())
		}
		if r.Head() != int64(popped) {
			t.Fatalf("head = %d, want %d", r.Head(), popped)
		}
	}
}

func TestRingWrapsAroundPreservingOrder(t *testing.T) {
	r := NewRing(8)
	if err := r.Push([]float32{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	if err := r.Pop(4); err != nil {
		t.Fatal(err)
	}
	if err := r.Push([]float32{7, 8, 9, 10}); err != nil {
		t.Fatal(err)
	}
	got, err := r.View(6)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{5, 6, 7, 8, 9, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("view = %v, want %v", got, want)
		}
	}
}

func TestRingViewDoesNotMutate(t *testing.T) {
	r := NewRing(16)
	if err := r.Push([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	before := r.Size()
	headBefore := r.Head()
	view, err := r.View(3)
	if err != nil {
		t.Fatal(err)
	}
	view[0] = 99
	if r.Size() != before || r.Head() != headBefore {
		t.Fatal("view mutated ring state")
	}
	again, _ := r.View(1)
	if again[0] != 1 {
		t.Fatal("view returned shared storage")
	}
}

func TestRingPopMoreThanSizeFails(t *testing.T) {
	r := NewRing(4)
	if err := r.Push([]float32{1}); err != nil {
		t.Fatal(err)
	}
	if err := r.Pop(2); err == nil {
		t.Fatal("expected error popping beyond size")
	}
}

func TestRingOverflowLeavesStateIntact(t *testing.T) {
	r := NewRing(4)
	if err := r.Push([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	err := r.Push([]float32{4, 5})
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if r.Size() != 3 {
		t.Fatalf("size changed on failed push: %d", r.Size())
	}
}
