package signal

// Ring is a fixed-capacity FIFO sample buffer. Appending beyond capacity
// silently evicts the oldest entry. It is the engine's backpressure
// mechanism: event arrival is unbounded, stored effect is not.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

// NewRing creates a ring buffer holding at most capacity items.
// A non-positive capacity is treated as 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends an item, evicting the oldest when full.
func (r *Ring[T]) Push(item T) {
	tail := (r.head + r.size) % len(r.items)
	r.items[tail] = item
	if r.size < len(r.items) {
		r.size++
	} else {
		r.head = (r.head + 1) % len(r.items)
	}
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the buffer capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// Items returns the stored items in arrival order (oldest first).
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// Reset discards all stored items.
func (r *Ring[T]) Reset() {
	r.head = 0
	r.size = 0
}
