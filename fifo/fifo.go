package fifo

import (
	"log"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// Unbounded is the sentinel value of maxQueued meaning "never blocks or
// errors on capacity" — the Go rendering of max_queued == -1.
const Unbounded = -1

// FIFO is a bounded, mirrored queue of item handles. Pushing onto a FIFO
// both enqueues locally (subject to its own capacity policy) and
// recursively pushes the same item onto every FIFO mirrored as a
// destination, while holding this FIFO's lock across the whole fan-out
// tree. See the package doc comment and spec.md §4 for the full
// semantics; this type implements them without modification.
//
// A FIFO must not be copied after first use.
type FIFO[T comparable] struct {
	opaque string
	ops    ItemOps[T]

	mu      sync.Mutex
	condIn  *sync.Cond // signaled by Push and Poke
	condOut *sync.Cond // signaled by Pop

	queued     []T
	maxQueued  int
	blockFlags Flags
	poked      bool

	dests   bufferList[T]
	sources bufferList[T]
}

// New allocates a FIFO owned by opaque (an identifier used only for
// diagnostics; if empty, a uuid is generated so log lines from distinct
// FIFOs stay distinguishable), with the given capacity policy
// (Unbounded, 0, or N>0, in which case Push errors or waits once more
// than N+1 items are already queued) and initial block flags. ops
// supplies the clone/free hooks for T.
func New[T comparable](opaque string, maxQueued int, flags Flags, ops ItemOps[T]) *FIFO[T] {
	if opaque == "" {
		opaque = uuid.NewString()
	}
	f := &FIFO[T]{
		opaque:     opaque,
		ops:        ops,
		maxQueued:  maxQueued,
		blockFlags: flags,
	}
	f.condIn = sync.NewCond(&f.mu)
	f.condOut = sync.NewCond(&f.mu)
	return f
}

// Opaque returns the owner identity this FIFO was created with.
func (f *FIFO[T]) Opaque() string { return f.opaque }

func (f *FIFO[T]) logf(format string, args ...any) {
	log.Printf("fifo[%s]: "+format, append([]any{f.opaque}, args...)...)
}

// Destroy frees every queued item and drops (without destroying) this
// FIFO's destination/source lists. Callers should call UnmirrorAll first
// so blocked peers wake up cleanly; Destroy itself does not notify peers.
func (f *FIFO[T]) Destroy() {
	f.mu.Lock()
	var zero T
	for _, item := range f.queued {
		if item != zero {
			f.ops.Free(item)
		}
	}
	f.queued = nil
	f.mu.Unlock()

	f.dests.Free()
	f.sources.Free()
}

// Mirror links src as a mirror source of dst: every future push to src
// also pushes to dst. The two appends are not covered by a shared lock —
// each buffer list is independently thread-safe — matching the spec's
// explicit statement that no lock spans both appends.
func Mirror[T comparable](dst, src *FIFO[T]) error {
	if dst == nil || src == nil {
		return ErrInvalidArgument
	}
	src.dests.Append(dst)
	dst.sources.Append(src)
	dst.logf("mirror: source %s attached", src.opaque)
	return nil
}

// Unmirror removes the symmetric mirror link between dst and src that
// Mirror established. Both removals are identity-based, matching by
// pointer rather than by any copyable handle.
func Unmirror[T comparable](dst, src *FIFO[T]) error {
	if dst == nil || src == nil {
		return ErrInvalidArgument
	}
	src.dests.Pop(identity(dst))
	dst.sources.Pop(identity(src))
	dst.logf("unmirror: source %s detached", src.opaque)
	return nil
}

// UnmirrorAll detaches every source and destination mirrored to or from
// ref, removing the reciprocal entry on each peer. After detaching a
// destination it signals that destination's cond_in, so a consumer
// blocked in Pop/Peek on it wakes up and can re-check its own state — the
// coordinated-shutdown primitive used to hot-swap a node mid-stream.
func UnmirrorAll[T comparable](ref *FIFO[T]) {
	ref.mu.Lock()
	defer ref.mu.Unlock()

	srcs := ref.sources.PopAll()
	for _, src := range srcs {
		src.dests.Pop(identity(ref))
	}

	dests := ref.dests.PopAll()
	for _, dst := range dests {
		dst.sources.Pop(identity(ref))

		dst.mu.Lock()
		dst.condIn.Signal()
		dst.mu.Unlock()
	}
	ref.logf("unmirror_all: detached %d source(s), %d destination(s)", len(srcs), len(dests))
}

// Push enqueues item locally (unless this FIFO never buffers locally, or
// item is the null sentinel) and then recursively pushes it to every
// mirrored destination, in the order destinations were mirrored, while
// still holding this FIFO's lock — the "push appears atomically at the
// source then propagates before Push returns" ordering guarantee in
// spec.md §5. A nil item is a legitimate sentinel: it still fans out
// (used to signal end-of-stream to every downstream) but is never cloned
// into this FIFO's own queue.
func (f *FIFO[T]) Push(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	isNull := item == zero

	if !isNull && f.maxQueued != 0 {
		if f.maxQueued > 0 && len(f.queued) > f.maxQueued+1 {
			if !f.blockFlags.Has(BlockMaxOutput) {
				return ErrQueueFull
			}
			// A single Wait, not a loop: one wake is taken as
			// permission to proceed even if still over capacity.
			// See DESIGN.md Open Question #3.
			f.condOut.Wait()
		}

		f.queued = append(f.queued, f.ops.Clone(item))
		f.condIn.Signal()
	}

	return f.distribute(item)
}

// distribute fans item out to every mirrored destination. Errors from
// individual destinations are collected with a multierror so every
// failing branch is logged, but only the first non-OOM error is returned
// to the caller; out-of-memory aborts the remaining iteration immediately
// and is returned unwrapped.
func (f *FIFO[T]) distribute(item T) error {
	dests := f.dests.Snapshot()
	if len(dests) == 0 {
		return nil
	}

	var merr *multierror.Error
	var firstErr error
	for _, d := range dests {
		if err := d.Push(item); err != nil {
			if xerrors.Is(err, ErrOutOfMemory) {
				return err
			}
			merr = multierror.Append(merr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if merr != nil {
		f.logf("fan-out to %d destination(s): %v", len(dests), merr)
		return firstErr
	}
	return nil
}

// popOrPeek implements the shared wait/wake template behind
// Pop/Peek/PopFlags/PeekFlags, parameterized by whether it removes the
// head (pop) or merely clones it (peek) and by the caller's local pull
// flags.
func (f *FIFO[T]) popOrPeek(remove bool, flags PullFlags) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	for len(f.queued) == 0 {
		blockNoInput := f.blockFlags.Has(BlockNoInput)
		noBlock := !blockNoInput || f.blockFlags.Has(PullNoBlock) || flags&PullNoBlockOnce != 0
		if noBlock {
			return zero, ErrTryAgain
		}
		if !f.poked {
			f.condIn.Wait()
		}
		if flags&PullPoke != 0 && f.poked {
			f.poked = false
			return zero, ErrTryAgain
		}
		f.poked = false
	}

	if !remove {
		return f.ops.Clone(f.queued[0]), nil
	}

	item := f.queued[0]
	copy(f.queued, f.queued[1:])
	f.queued[len(f.queued)-1] = zero
	f.queued = f.queued[:len(f.queued)-1]
	if f.maxQueued > 0 {
		f.condOut.Signal()
	}
	return item, nil
}

// Pop removes and returns the head item, blocking per this FIFO's
// persistent block flags.
func (f *FIFO[T]) Pop() (T, error) { return f.popOrPeek(true, 0) }

// Peek clones and returns the head item without removing it, blocking
// per this FIFO's persistent block flags.
func (f *FIFO[T]) Peek() (T, error) { return f.popOrPeek(false, 0) }

// PopFlags is Pop with an additional per-call override: PullNoBlockOnce
// forces a non-blocking attempt regardless of persistent flags, and
// PullPoke asks to observe a targeted Poke wake as ErrTryAgain instead of
// silently re-blocking.
func (f *FIFO[T]) PopFlags(flags PullFlags) (T, error) { return f.popOrPeek(true, flags) }

// PeekFlags is Peek with the same per-call overrides as PopFlags.
func (f *FIFO[T]) PeekFlags(flags PullFlags) (T, error) { return f.popOrPeek(false, flags) }

// Poke wakes a consumer blocked in Pop/Peek without delivering an item.
// Consumers that passed PullPoke observe it as ErrTryAgain; others
// simply re-check their wait condition and, finding the queue still
// empty, re-block.
func (f *FIFO[T]) Poke() {
	f.mu.Lock()
	f.poked = true
	f.condIn.Signal()
	f.mu.Unlock()
	f.logf("poke")
}

// IsFull reports whether this FIFO is at or over capacity: always true
// when maxQueued == 0, always false when unbounded, and true once the
// queue holds more than maxQueued+1 items — the same strict threshold
// Push blocks or errors on, preserved exactly per DESIGN.md Open
// Question #1. IsFull still reports false with exactly maxQueued+1 items
// queued, and a push at that point succeeds; once IsFull reports true, a
// Push without BlockMaxOutput returns ErrQueueFull.
func (f *FIFO[T]) IsFull() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.maxQueued == 0:
		return true
	case f.maxQueued < 0:
		return false
	default:
		return len(f.queued) > f.maxQueued+1
	}
}

// Size reports the current number of locally queued items.
func (f *FIFO[T]) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queued)
}

// MaxSize reports the configured capacity, or Unbounded.
func (f *FIFO[T]) MaxSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxQueued
}

// SetMaxQueued assigns a new capacity. It does not retroactively evict
// queued items or wake blocked waiters; a shrink below the current
// length only changes the behavior of subsequent pushes, per DESIGN.md
// Open Question #2.
func (f *FIFO[T]) SetMaxQueued(n int) {
	f.mu.Lock()
	f.maxQueued = n
	f.mu.Unlock()
}

// SetBlockFlags assigns this FIFO's persistent block flags atomically.
// Consumers blocked in Pop/Peek re-read this value each time they are
// woken (see popOrPeek), but SetBlockFlags itself wakes no one: a waiter
// sees the change only after a Push, Poke or UnmirrorAll signal. A
// producer already waiting in Push does not re-read the flags.
func (f *FIFO[T]) SetBlockFlags(flags Flags) {
	f.mu.Lock()
	f.blockFlags = flags
	f.mu.Unlock()
}
