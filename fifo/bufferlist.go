package fifo

import "sync"

// bufferList is an unordered, thread-safe collection of *FIFO[T] handles.
// It backs both the destination and source sets of a FIFO. Unlike the
// original's refcounted buffer handles, entries here are ordinary Go
// pointers: holding one in the slice is enough to keep the peer FIFO
// alive for as long as the mirror link exists, so Append/Clear only need
// to manage membership, not reference counts.
type bufferList[T comparable] struct {
	mu      sync.Mutex
	entries []*FIFO[T]
}

// Append adds one reference to peer.
func (b *bufferList[T]) Append(peer *FIFO[T]) {
	b.mu.Lock()
	b.entries = append(b.entries, peer)
	b.mu.Unlock()
}

// Snapshot returns the current entries in traversal order. Traversal
// itself is serialized by this call (it copies under the list's own
// lock) rather than by holding the lock across the caller's use of the
// result, which is the Go rendering of iter_ref's "bump refcount, caller
// releases" contract.
func (b *bufferList[T]) Snapshot() []*FIFO[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*FIFO[T], len(b.entries))
	copy(out, b.entries)
	return out
}

// Len reports the number of entries currently in the list.
func (b *bufferList[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Pop removes and returns the first entry matching predicate, or nil if
// none match.
func (b *bufferList[T]) Pop(predicate func(*FIFO[T]) bool) *FIFO[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if predicate(e) {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return e
		}
	}
	return nil
}

// PopAll removes and returns every entry currently in the list, leaving
// it empty.
func (b *bufferList[T]) PopAll() []*FIFO[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.entries
	b.entries = nil
	return out
}

// first is the built-in "match anything" predicate: it matches the first
// entry regardless of identity.
func first[T comparable](*FIFO[T]) bool { return true }

// identity returns a predicate matching a peer by pointer identity, the
// Go rendering of the original's "match by underlying struct pointer, not
// handle" contract.
func identity[T comparable](peer *FIFO[T]) func(*FIFO[T]) bool {
	return func(e *FIFO[T]) bool { return e == peer }
}

// Free releases all entries (drops the slice; peers themselves are only
// unreferenced, never destroyed, by this call).
func (b *bufferList[T]) Free() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}
