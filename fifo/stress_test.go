package fifo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/xerrors"
)

// TestConcurrentProducersConsumers drives many goroutines pushing and
// popping against one unbounded FIFO under -race, the same "hammer it and
// count" shape as hayabusa-cloud-lfq's consistency tests, adapted here to
// a blocking (not lock-free) queue: every pushed item must be observed by
// exactly one consumer.
//
// cond_in.Signal (fifo.go's Push) wakes at most one waiter per push, so
// once the producers stop, any consumer still parked in a blocking Pop at
// that moment has nothing left to wake it. Consumers therefore pull with
// PullPoke, and once the producers have finished the test keeps calling
// Poke until all consumers have woken up, noticed the closed done channel,
// and returned — one Poke only releases one waiter at a time.
func TestConcurrentProducersConsumers(t *testing.T) {
	const (
		producers     = 8
		consumers     = 8
		itemsPerGoRtn = 500
		total         = producers * itemsPerGoRtn
	)

	f := New("stress", Unbounded, BlockNoInput, intOps())

	var producerWg sync.WaitGroup
	for p := 0; p < producers; p++ {
		producerWg.Add(1)
		go func(base int) {
			defer producerWg.Done()
			for i := 1; i <= itemsPerGoRtn; i++ {
				if err := f.Push(base*itemsPerGoRtn + i); err != nil {
					t.Errorf("Push: %v", err)
					return
				}
			}
		}(p)
	}

	var consumed int64
	done := make(chan struct{})
	var consumerWg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				_, err := f.PopFlags(PullPoke)
				switch {
				case err == nil:
					if atomic.AddInt64(&consumed, 1) == total {
						close(done)
						return
					}
				case xerrors.Is(err, ErrTryAgain):
					// woken by a poke with nothing queued; re-check done and retry
				default:
					t.Errorf("Pop: %v", err)
					return
				}
			}
		}()
	}

	producerWg.Wait()

	pokeStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-pokeStop:
				return
			case <-ticker.C:
				f.Poke()
			}
		}
	}()

	consumerWg.Wait()
	close(pokeStop)

	if got := atomic.LoadInt64(&consumed); got != total {
		t.Fatalf("consumed %d items, want %d", got, total)
	}
}

// TestMirrorFanOutUnderConcurrency pushes from one producer onto a source
// mirrored to several destinations while consumers drain every destination
// concurrently, verifying every destination observes every pushed item.
func TestMirrorFanOutUnderConcurrency(t *testing.T) {
	const (
		items = 200
		dests = 4
	)

	src := New("src", Unbounded, 0, intOps())
	destinations := make([]*FIFO[int], dests)
	for i := range destinations {
		destinations[i] = New("dst", Unbounded, BlockNoInput, intOps())
		if err := Mirror(destinations[i], src); err != nil {
			t.Fatalf("Mirror: %v", err)
		}
	}

	var wg sync.WaitGroup
	counts := make([]int64, dests)
	for i := range destinations {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < items; n++ {
				if _, err := destinations[i].Pop(); err != nil {
					t.Errorf("dest %d Pop: %v", i, err)
					return
				}
				atomic.AddInt64(&counts[i], 1)
			}
		}(i)
	}

	for n := 1; n <= items; n++ {
		if err := src.Push(n); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	wg.Wait()
	for i, got := range counts {
		if got != items {
			t.Fatalf("destination %d received %d items, want %d", i, got, items)
		}
	}
}
