// Package ring provides a fixed-capacity circular buffer.
package ring

// Buffer keeps the most recent entries up to a fixed capacity; older entries
// are overwritten. Not safe for concurrent use - callers guard it with their
// own lock.
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

// New creates a buffer with the given capacity. Panics if capacity < 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic("ring: capacity must be at least 1")
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Append adds an entry, evicting the oldest one if the buffer is full.
func (b *Buffer[T]) Append(v T) {
	idx := (b.head + b.size) % len(b.items)
	b.items[idx] = v
	if b.size < len(b.items) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.items)
	}
}

// Len returns the number of entries currently held.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Tail returns up to n of the most recent entries, oldest first.
func (b *Buffer[T]) Tail(n int) []T {
	if n > b.size {
		n = b.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	start := b.size - n
	for i := start; i < b.size; i++ {
		out = append(out, b.items[(b.head+i)%len(b.items)])
	}
	return out
}
