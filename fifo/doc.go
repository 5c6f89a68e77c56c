// Package fifo implements a thread-safe, reference-counted, fan-out FIFO
// queue used to connect processing nodes in a media streaming pipeline.
//
// A FIFO is a bounded queue of item handles guarded by a mutex and two
// condition variables. Pushing an item onto a FIFO both enqueues it
// locally (for that FIFO's own consumer) and recursively replicates the
// push to every FIFO mirrored as a destination. Consumers pull with a mix
// of blocking and non-blocking policies configured per FIFO.
//
// The type is generic over the item it carries; callers supply clone/free
// hooks for their item type via ItemOps at construction time, the Go
// rendering of the original's macro-driven per-type instantiation. See
// the media/frame and media/packet packages for the two concrete
// instantiations this repository ships.
package fifo
