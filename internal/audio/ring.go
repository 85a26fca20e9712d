package audio

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a push would exceed the ring capacity. The
// windowing loop must run to quiescence after every push, so hitting this
// means the consumer is not draining — a programming error, not a runtime
// condition to paper over.
var ErrOverflow = errors.New("ring buffer overflow")

// Ring is a fixed-capacity circular buffer of normalized audio samples.
// Single-writer, single-reader by construction: the decode loop is both the
// sole pusher and the sole windowing consumer, so no locking is needed.
type Ring struct {
	samples []float32
	start   int   // physical index of the logical front
	size    int   // samples currently held
	head    int64 // absolute index of the logical front, monotonically increasing
}

// NewRing allocates a ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{samples: make([]float32, capacity)}
}

// Capacity returns the fixed maximum number of samples.
func (r *Ring) Capacity() int { return len(r.samples) }

// Size returns the number of samples currently held.
func (r *Ring) Size() int { return r.size }

// Head returns the absolute sample index of the logical front. It advances
// only on Pop and addresses un-popped data in the whole-stream coordinate
// space, which is what region start timestamps are derived from.
func (r *Ring) Head() int64 { return r.head }

// Push appends samples to the logical tail. Fails with ErrOverflow if the
// ring cannot hold them; no partial write happens in that case.
func (r *Ring) Push(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	if r.size+len(samples) > len(r.samples) {
		return fmt.Errorf("%w: size %d + push %d > capacity %d",
			ErrOverflow, r.size, len(samples), len(r.samples))
	}
	tail := (r.start + r.size) % len(r.samples)
	n := copy(r.samples[tail:], samples)
	if n < len(samples) {
		copy(r.samples, samples[n:])
	}
	r.size += len(samples)
	return nil
}

// Pop removes n samples from the front, advancing the head cursor.
func (r *Ring) Pop(n int) error {
	if n < 0 || n > r.size {
		return fmt.Errorf("pop %d samples with %d available", n, r.size)
	}
	r.start = (r.start + n) % len(r.samples)
	r.size -= n
	r.head += int64(n)
	return nil
}

// View copies the first n samples from the front into a fresh slice without
// mutating any state.
func (r *Ring) View(n int) ([]float32, error) {
	if n < 0 || n > r.size {
		return nil, fmt.Errorf("view %d samples with %d available", n, r.size)
	}
	out := make([]float32, n)
	first := copy(out, r.samples[r.start:min(r.start+n, len(r.samples))])
	if first < n {
		copy(out[first:], r.samples)
	}
	return out, nil
}
