// Package frame provides the uncompressed-sample item handle instantiated
// over fifo.FIFO. A Frame is a reference-counted carrier: Clone is an O(1)
// bump of a shared refcount rather than a deep copy of sample data, and
// Free drops one reference, releasing the backing buffer only once the
// last holder has freed it.
package frame

import (
	"github.com/google/uuid"
	"github.com/txproto/txfifo/fifo"
	"github.com/txproto/txfifo/internal/refcount"
)

// Frame carries one decoded media sample (audio or video). Data is the
// frame's backing storage; multiple Frame handles may point at the same
// Data slice once Clone has been called, which is why Data must never
// be mutated in place by a holder that isn't certain it is the only
// reference — the surrounding codec/filter layer owns that discipline,
// the same way the original's refcounted buffer handles do.
type Frame struct {
	ID uuid.UUID

	PTS       int64
	Samples   int
	ChannelNo int

	Data []byte

	refs *refcount.Counter
}

// New allocates a Frame holding one reference over data.
func New(pts int64, data []byte) *Frame {
	return &Frame{
		ID:      uuid.New(),
		PTS:     pts,
		Samples: len(data),
		Data:    data,
		refs:    refcount.New(),
	}
}

// Clone returns a new handle sharing this Frame's backing storage,
// bumping its refcount. Cloning the nil Frame returns nil, matching the
// item-handle contract's "clone(null) = null".
func Clone(f *Frame) *Frame {
	if f == nil {
		return nil
	}
	f.refs.Add()
	clone := *f
	return &clone
}

// Free drops one reference to f, releasing its backing storage once the
// last holder has freed it. Freeing nil is a no-op.
func Free(f *Frame) {
	if f == nil {
		return
	}
	if f.refs.Release() {
		f.Data = nil
	}
}

// Refs reports the current refcount, for tests and diagnostics only.
func (f *Frame) Refs() int32 { return f.refs.Load() }

// Ops returns the fifo.ItemOps clone/free hooks for *Frame, the
// capability set passed to fifo.New when instantiating a frame FIFO.
func Ops() fifo.ItemOps[*Frame] {
	return fifo.ItemOps[*Frame]{Clone: Clone, Free: Free}
}
