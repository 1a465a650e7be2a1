package concurrent

import "sync"

// Slice is an append-only list safe for concurrent use. Drain hands the
// whole backing array to the caller and starts over with an empty one.
type Slice[V any] struct {
	mu     sync.Mutex
	values []V
}

func NewSlice[V any]() *Slice[V] {
	return &Slice[V]{}
}

func (s *Slice[V]) Append(values ...V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, values...)
}

func (s *Slice[V]) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.values)
}

// Drain returns the current contents and leaves the slice empty. Values
// appended after Drain returns are never part of the returned slice.
func (s *Slice[V]) Drain() []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := s.values
	s.values = nil
	return drained
}
