package sim

// CircularBuffer is a fixed-capacity ring buffer of float64 samples
// plus their running sum, supporting O(1) push.
type CircularBuffer struct {
	data []float64
	tail int
	n    int // number of slots filled so far, capped at len(data)
	Sum  float64
}

// NewCircularBuffer creates a buffer of the given window length. A
// non-positive window is treated as 1 (a window of zero samples is
// not meaningful).
func NewCircularBuffer(window int) *CircularBuffer {
	if window < 1 {
		window = 1
	}
	return &CircularBuffer{data: make([]float64, window)}
}

// Len returns the window capacity.
func (b *CircularBuffer) Len() int {
	return len(b.data)
}

// Push records v as the newest sample, overwriting the oldest once the
// buffer is full, and returns the net change in Sum (v minus the
// overwritten value, or v alone while the buffer is still filling).
func (b *CircularBuffer) Push(v float64) float64 {
	b.tail = (b.tail + 1) % len(b.data)
	old := 0.0
	if b.n == len(b.data) {
		old = b.data[b.tail]
	} else {
		b.n++
	}
	b.data[b.tail] = v
	delta := v - old
	b.Sum += delta
	return delta
}

// Count returns the number of filled samples, capped at Len().
func (b *CircularBuffer) Count() int {
	return b.n
}

// Recent returns the buffer's filled samples in chronological order
// (oldest first). Used by the convergence tracker, which needs the
// samples in time order to split into chains.
func (b *CircularBuffer) Recent() []float64 {
	out := make([]float64, b.n)
	if b.n == 0 {
		return out
	}
	start := (b.tail - b.n + 1 + len(b.data)) % len(b.data)
	for i := 0; i < b.n; i++ {
		out[i] = b.data[(start+i)%len(b.data)]
	}
	return out
}
