// Package refcount provides a small atomic reference counter shared by
// the media/frame and media/packet item types. Its padding follows the
// cache-line-padding idiom used throughout hayabusa-cloud-lfq's options.go
// (pad [64]byte) to keep a hot frame/packet's counter from false-sharing
// a cache line with neighboring allocations on the producer/consumer fast
// path.
package refcount

import "sync/atomic"

// pad fills out a cache line after the 4-byte counter field below it.
type pad [64 - 4]byte

// Counter is a thread-safe reference counter. New returns a Counter
// already holding one reference, matching the convention that a freshly
// allocated item starts out owned by its allocator.
type Counter struct {
	n atomic.Int32
	_ pad
}

// New returns a Counter initialized to one reference.
func New() *Counter {
	c := &Counter{}
	c.n.Store(1)
	return c
}

// Add bumps the refcount by one, the operation behind Clone.
func (c *Counter) Add() { c.n.Add(1) }

// Release drops one reference and reports whether this was the last one
// (the caller should release the underlying storage in that case).
func (c *Counter) Release() bool {
	return c.n.Add(-1) == 0
}

// Load returns the current refcount, for diagnostics and tests only.
func (c *Counter) Load() int32 { return c.n.Load() }
