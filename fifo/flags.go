package fifo

import (
	"strings"

	"golang.org/x/xerrors"
)

// Flags is the set of persistent block policy flags carried by a FIFO.
// It is configured at New or via SetBlockFlags and re-read by a blocked
// Pop/Peek on every wake from its condition-variable wait, since
// SetBlockFlags may change it while a consumer is blocked.
type Flags uint8

const (
	// BlockNoInput causes Pop/Peek to wait on cond_in when the queue is
	// empty, instead of returning ErrTryAgain immediately.
	BlockNoInput Flags = 1 << iota
	// BlockMaxOutput causes Push to wait on cond_out when the queue is
	// over capacity, instead of returning ErrQueueFull immediately.
	BlockMaxOutput
	// PullNoBlock, set persistently on a FIFO, makes every Pop/Peek on it
	// behave as if PullNoBlockOnce had been passed: pulls never block on
	// an empty queue, regardless of BlockNoInput. The per-call
	// PullNoBlockOnce override (see PullFlags below) exists for callers
	// that want the same effect for a single call without reconfiguring
	// the FIFO.
	PullNoBlock
)

// Has reports whether all bits in want are set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// PullFlags is a per-call flag set passed to PopFlags/PeekFlags. Unlike
// Flags, these are never stored on the FIFO.
type PullFlags uint8

const (
	// PullNoBlockOnce forces this single pull to return ErrTryAgain
	// immediately instead of blocking, overriding the FIFO's persistent
	// BlockNoInput for one call. It shares semantics with the
	// PullNoBlock token but is scoped to the call, not the FIFO.
	PullNoBlockOnce PullFlags = 1 << iota
	// PullPoke asks to observe a poke: if the caller is woken by Poke
	// rather than by a push, PopFlags/PeekFlags clears the poke and
	// returns ErrTryAgain so the caller can re-decide what to do.
	// Callers that don't pass PullPoke simply re-enter the wait on a
	// poke-only wake.
	PullPoke
)

var flagNames = []struct {
	name string
	flag Flags
}{
	{"block_no_input", BlockNoInput},
	{"block_max_output", BlockMaxOutput},
	{"pull_no_block", PullNoBlock},
}

// ParseBlockFlags parses a comma-separated list of the three lowercase
// flag tokens ("block_no_input", "block_max_output", "pull_no_block") and
// returns the corresponding flag set. It is the Go rendering of
// string_to_block_flags; an unknown token returns ErrInvalidArgument.
func ParseBlockFlags(s string) (Flags, error) {
	var out Flags
	if s == "" {
		return out, nil
	}
	for _, tok := range strings.Split(s, ",") {
		matched := false
		for _, fn := range flagNames {
			if tok == fn.name {
				out |= fn.flag
				matched = true
				break
			}
		}
		if !matched {
			return 0, xerrors.Errorf("fifo: parse block flags %q: %w", tok, ErrInvalidArgument)
		}
	}
	return out, nil
}

// String renders f back into the comma-separated token form accepted by
// ParseBlockFlags, in a fixed canonical order.
func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, ",")
}
