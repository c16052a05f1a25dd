package history

// DefaultCapacity is used when a buffer is created with a non-positive capacity.
const DefaultCapacity = 60

// RingBuffer is a fixed-capacity FIFO sample store. Pushing into a full
// buffer evicts the oldest sample, so Len grows to Cap and then stays there.
//
// A RingBuffer is not safe for concurrent use; Series adds locking for
// buffers shared between the poll goroutines and the UI loop.
type RingBuffer[T any] struct {
	data  []T
	head  int // next write position
	count int
}

// NewRingBuffer creates a buffer holding at most capacity samples.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// Push appends a sample, evicting the oldest one when the buffer is full.
func (r *RingBuffer[T]) Push(sample T) {
	r.data[r.head] = sample
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Snapshot returns the stored samples oldest first. The returned slice is a
// copy and may be modified freely.
func (r *RingBuffer[T]) Snapshot() []T {
	return r.Last(r.count)
}

// Last returns up to n of the most recent samples, oldest first.
func (r *RingBuffer[T]) Last(n int) []T {
	if n <= 0 || r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}

	out := make([]T, n)
	start := (r.head - n + len(r.data)) % len(r.data)
	for i := 0; i < n; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Newest returns the most recently pushed sample.
func (r *RingBuffer[T]) Newest() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.data[(r.head-1+len(r.data))%len(r.data)], true
}

// Len returns the number of stored samples.
func (r *RingBuffer[T]) Len() int {
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}

// Reset drops every sample while keeping the capacity.
func (r *RingBuffer[T]) Reset() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.head = 0
	r.count = 0
}
