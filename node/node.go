// Package node adapts the teacher pipeline package's StageRunner/Processor
// shape onto fifo.FIFO: instead of channels wired stage-to-stage by a
// Pipeline driver, a Node pulls from one fifo.FIFO[T], runs a Processor[T]
// over each item, and pushes the result onto an output fifo.FIFO[T]. Fan-out
// to multiple downstream consumers is handled by fifo.Mirror on the output
// FIFO itself, not by this package, so there is no Broadcast/WorkerPool
// equivalent here beyond the fixed Pool variant below.
//
// This package exists only to drive fifo.FIFO through realistic
// multi-goroutine wiring in tests (push/pull, mirrored fan-out, hot swap).
// It is not a demuxer, decoder, filter, or encoder implementation.
package node

import (
	"context"
	"sync"

	"golang.org/x/xerrors"

	"github.com/txproto/txfifo/fifo"
)

// Processor is implemented by types that transform one item into another
// as part of a Node. Returning a nil item (the FIFO's null sentinel)
// discards the input without pushing anything downstream.
type Processor[T comparable] interface {
	Process(ctx context.Context, item T) (T, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc[T comparable] func(ctx context.Context, item T) (T, error)

// Process calls f(ctx, item).
func (f ProcessorFunc[T]) Process(ctx context.Context, item T) (T, error) {
	return f(ctx, item)
}

// Node drives a Processor by repeatedly pulling from In and pushing the
// result to Out. A Node owns no FIFO; In/Out are wired by the caller via
// fifo.New and fifo.Mirror before Run is called, which is what lets a node
// be hot-swapped mid-stream (UnmirrorAll the old node's In, Mirror a new
// one in its place, per spec.md's Scenario F).
type Node[T comparable] struct {
	Name string
	In   *fifo.FIFO[T]
	Out  *fifo.FIFO[T]
	Proc Processor[T]
}

// New returns a Node wired to pull from in, process with proc, and push
// to out. out may be nil for a terminal node (e.g. a sink that consumes
// items itself inside Proc and always returns the zero value).
func New[T comparable](name string, in, out *fifo.FIFO[T], proc Processor[T]) *Node[T] {
	return &Node[T]{Name: name, In: in, Out: out, Proc: proc}
}

// Run pulls items from n.In and drives them through n.Proc until ctx is
// canceled or a Pop returns an error other than ErrTryAgain. fifo.FIFO has
// no cancellation token of its own (see spec's "shutdown is destruction of
// the upstream" model), so Run pops with PullPoke: a blocked Run only
// notices ctx cancellation once something wakes it, which is why stopping
// a Node requires calling In.Poke() (or unmirroring/destroying In) after
// canceling ctx, not ctx cancellation alone.
// Errors from Process are wrapped with the node's name, mirroring the
// teacher's stage-index wrapping in pipeline.fifo.Run.
func (n *Node[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		itemIn, err := n.In.PopFlags(fifo.PullPoke)
		if err != nil {
			if xerrors.Is(err, fifo.ErrTryAgain) {
				continue
			}
			return xerrors.Errorf("node %s: pop: %w", n.Name, err)
		}

		itemOut, err := n.Proc.Process(ctx, itemIn)
		if err != nil {
			return xerrors.Errorf("node %s: process: %w", n.Name, err)
		}

		var zero T
		if itemOut == zero || n.Out == nil {
			continue
		}

		if err := n.Out.Push(itemOut); err != nil {
			return xerrors.Errorf("node %s: push: %w", n.Name, err)
		}
	}
}

// Pool runs numWorkers copies of a Node concurrently, all pulling from the
// same In and pushing to the same Out — the Node-level equivalent of the
// teacher's FixedWorkerPool. Items are not guaranteed to preserve arrival
// order across workers, same as the teacher's pool.
type Pool[T comparable] struct {
	nodes []*Node[T]
}

// NewPool builds a fixed pool of numWorkers nodes sharing in/out and proc.
func NewPool[T comparable](name string, in, out *fifo.FIFO[T], proc Processor[T], numWorkers int) *Pool[T] {
	if numWorkers <= 0 {
		panic("node: NewPool: numWorkers must be > 0")
	}
	nodes := make([]*Node[T], numWorkers)
	for i := range nodes {
		nodes[i] = New(name, in, out, proc)
	}
	return &Pool[T]{nodes: nodes}
}

// Run starts every worker in the pool and blocks until all of them return,
// either because ctx was canceled or because one of them errored — the
// first error observed is returned, matching the first-error propagation
// the FIFO core itself uses for fan-out (fifo.FIFO.distribute).
func (p *Pool[T]) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(p.nodes))

	for _, n := range p.nodes {
		wg.Add(1)
		go func(n *Node[T]) {
			defer wg.Done()
			if err := n.Run(ctx); err != nil {
				errs <- err
			}
		}(n)
	}

	wg.Wait()
	close(errs)

	var firstErr error
	for err := range errs {
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
