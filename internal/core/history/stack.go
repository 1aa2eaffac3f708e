package history

// boundedStack is a LIFO stack that evicts its oldest entry once it holds
// more than limit items.
type boundedStack[T any] struct {
	items []T
	limit int
}

func newBoundedStack[T any](limit int) boundedStack[T] {
	return boundedStack[T]{items: make([]T, 0, limit), limit: limit}
}

// push adds v and reports the evicted entry, if any.
func (s *boundedStack[T]) push(v T) (evicted T, didEvict bool) {
	s.items = append(s.items, v)
	if len(s.items) > s.limit {
		evicted = s.items[0]
		s.dropOldest()
		return evicted, true
	}
	return evicted, false
}

func (s *boundedStack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	v := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return v, true
}

// dropOldest removes the bottom entry.
func (s *boundedStack[T]) dropOldest() bool {
	if len(s.items) == 0 {
		return false
	}
	var zero T
	copy(s.items, s.items[1:])
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return true
}

func (s *boundedStack[T]) clear() {
	var zero T
	for i := range s.items {
		s.items[i] = zero
	}
	s.items = s.items[:0]
}

func (s *boundedStack[T]) len() int { return len(s.items) }

// newestFirst returns the entries from top to bottom.
func (s *boundedStack[T]) newestFirst() []T {
	out := make([]T, len(s.items))
	for i, v := range s.items {
		out[len(s.items)-1-i] = v
	}
	return out
}

func (s *boundedStack[T]) top() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}
