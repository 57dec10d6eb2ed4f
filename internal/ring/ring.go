// Package ring provides a fixed-capacity FIFO ring that overwrites its oldest
// entry when full.
package ring

// Buffer is a bounded FIFO ring. Once Len reaches Cap, each Push evicts the
// oldest item. Buffer is not safe for concurrent use; callers serialize.
type Buffer[T any] struct {
	buf      []T
	head     int // oldest item
	tail     int // next write position
	count    int
	capacity int

	// Stats
	totalPushed  int64
	totalEvicted int64
}

// New creates a ring holding at most capacity items.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Push appends item. If the ring was full, the oldest item is removed and
// returned with ok=true.
func (b *Buffer[T]) Push(item T) (evicted T, ok bool) {
	if b.count == b.capacity {
		evicted = b.buf[b.head]
		var zero T
		b.buf[b.head] = zero // Clear reference for GC
		b.head = (b.head + 1) % b.capacity
		b.count--
		b.totalEvicted++
		ok = true
	}

	b.buf[b.tail] = item
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.totalPushed++

	return evicted, ok
}

// Items returns a copy of the contents, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, b.count)
	if b.count == 0 {
		return out
	}
	if b.head < b.tail {
		copy(out, b.buf[b.head:b.tail])
	} else {
		// Wrapped: [head...end) + [0...tail)
		n := copy(out, b.buf[b.head:])
		copy(out[n:], b.buf[:b.tail])
	}
	return out
}

// Len returns the number of items held.
func (b *Buffer[T]) Len() int {
	return b.count
}

// Cap returns the maximum number of items held.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Stats returns ring statistics.
func (b *Buffer[T]) Stats() Stats {
	return Stats{
		Count:        b.count,
		Capacity:     b.capacity,
		TotalPushed:  b.totalPushed,
		TotalEvicted: b.totalEvicted,
	}
}

// Stats contains ring statistics.
type Stats struct {
	Count        int
	Capacity     int
	TotalPushed  int64
	TotalEvicted int64
}
