// Package packet provides the compressed-sample item handle instantiated
// over fifo.FIFO. A Packet shares the same reference-counted clone/free
// contract as media/frame; the two packages are otherwise independent
// instantiations of the same generic fifo.FIFO, differing only in the
// item type and its clone/free hooks, per spec.md §2.
package packet

import (
	"github.com/google/uuid"
	"github.com/txproto/txfifo/fifo"
	"github.com/txproto/txfifo/internal/refcount"
)

// StreamKind distinguishes the elementary stream a Packet belongs to.
type StreamKind uint8

const (
	StreamUnknown StreamKind = iota
	StreamAudio
	StreamVideo
)

// Packet carries one compressed access unit (e.g. one H.264 NAL access
// unit or one AAC frame) before decoding.
type Packet struct {
	ID uuid.UUID

	Stream   StreamKind
	DTS, PTS int64
	KeyFrame bool

	Data []byte

	refs *refcount.Counter
}

// New allocates a Packet holding one reference over data.
func New(stream StreamKind, dts, pts int64, keyFrame bool, data []byte) *Packet {
	return &Packet{
		ID:       uuid.New(),
		Stream:   stream,
		DTS:      dts,
		PTS:      pts,
		KeyFrame: keyFrame,
		Data:     data,
		refs:     refcount.New(),
	}
}

// Clone returns a new handle sharing this Packet's backing storage,
// bumping its refcount. Cloning the nil Packet returns nil.
func Clone(p *Packet) *Packet {
	if p == nil {
		return nil
	}
	p.refs.Add()
	clone := *p
	return &clone
}

// Free drops one reference to p, releasing its backing storage once the
// last holder has freed it. Freeing nil is a no-op.
func Free(p *Packet) {
	if p == nil {
		return
	}
	if p.refs.Release() {
		p.Data = nil
	}
}

// Refs reports the current refcount, for tests and diagnostics only.
func (p *Packet) Refs() int32 { return p.refs.Load() }

// Ops returns the fifo.ItemOps clone/free hooks for *Packet, the
// capability set passed to fifo.New when instantiating a packet FIFO.
func Ops() fifo.ItemOps[*Packet] {
	return fifo.ItemOps[*Packet]{Clone: Clone, Free: Free}
}
