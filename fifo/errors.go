package fifo

import "golang.org/x/xerrors"

var (
	// ErrInvalidArgument is returned when a nil FIFO handle is supplied
	// where one is required, or when an unknown flag token is parsed.
	ErrInvalidArgument = xerrors.New("fifo: invalid argument")

	// ErrQueueFull is returned by Push when a bounded FIFO is over
	// capacity and BlockMaxOutput is not set.
	ErrQueueFull = xerrors.New("fifo: queue full")

	// ErrTryAgain is returned by Pop/Peek when the queue is empty under a
	// non-blocking policy, or when the caller was woken by a poke while
	// observing PullPoke.
	ErrTryAgain = xerrors.New("fifo: try again")

	// ErrOutOfMemory is returned by Push when growing the backing store
	// fails. It is fatal for the whole fan-out chain: iteration over
	// destinations halts immediately and the error is surfaced as-is.
	ErrOutOfMemory = xerrors.New("fifo: out of memory")
)
