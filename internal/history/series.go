package history

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSeriesWidth is returned when a push does not carry one value per buffer.
var ErrSeriesWidth = errors.New("value count does not match series width")

// Series is a set of equally sized ring buffers plotted together on one
// chart. Values for every buffer are pushed in a single call so the buffers
// stay index-aligned: sample i of "upload" always pairs with sample i of
// "download".
type Series[T any] struct {
	mu    sync.RWMutex
	names []string
	index map[string]int
	bufs  []*RingBuffer[T]
}

// NewSeries creates a series with one buffer per name, all sharing capacity.
func NewSeries[T any](capacity int, names ...string) *Series[T] {
	s := &Series[T]{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		bufs:  make([]*RingBuffer[T], len(names)),
	}
	for i, name := range names {
		s.index[name] = i
		s.bufs[i] = NewRingBuffer[T](capacity)
	}
	return s
}

// Push appends one sample to every buffer, in the order the names were
// given to NewSeries. A call with the wrong number of values pushes nothing.
func (s *Series[T]) Push(values ...T) error {
	if len(values) != len(s.bufs) {
		return fmt.Errorf("series push: got %d values for %d buffers: %w", len(values), len(s.bufs), ErrSeriesWidth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range values {
		s.bufs[i].Push(v)
	}
	return nil
}

// Snapshot returns the samples of the named buffer, oldest first.
// Returns nil for an unknown name.
func (s *Series[T]) Snapshot(name string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return s.bufs[i].Snapshot()
}

// SnapshotAll returns every buffer's samples under one lock, keyed by name.
func (s *Series[T]) SnapshotAll() map[string][]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]T, len(s.names))
	for i, name := range s.names {
		out[name] = s.bufs[i].Snapshot()
	}
	return out
}

// Newest returns the latest sample of the named buffer.
func (s *Series[T]) Newest(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	i, ok := s.index[name]
	if !ok {
		return zero, false
	}
	return s.bufs[i].Newest()
}

// Names returns the buffer names in push order.
func (s *Series[T]) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of aligned samples.
func (s *Series[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.bufs) == 0 {
		return 0
	}
	return s.bufs[0].Len()
}

// Cap returns the shared capacity.
func (s *Series[T]) Cap() int {
	if len(s.bufs) == 0 {
		return 0
	}
	return s.bufs[0].Cap()
}

// Reset clears every buffer.
func (s *Series[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bufs {
		b.Reset()
	}
}
