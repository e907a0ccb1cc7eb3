// Package ticker implements the elapsed-time ticker: a cooperative task
// that emits the current session duration once per second, cancelled via a
// one-shot notification channel (spec §5, §9 — grounded on the ticker
// pattern vincent99-velocipi's App uses for its periodic event emission).
package ticker

import (
	"time"
)

// Ticker runs a background goroutine that calls onTick once per interval
// until Stop is called. Stop blocks until the goroutine has fully exited,
// matching spec §5's "tasks must complete, not merely abort" requirement.
type Ticker struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the ticker goroutine, calling onTick(elapsed()) once per
// interval.
func Start(interval time.Duration, elapsed func() time.Duration, onTick func(time.Duration)) *Ticker {
	t := &Ticker{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go func() {
		defer close(t.doneCh)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-tk.C:
				onTick(elapsed())
			}
		}
	}()

	return t
}

// Stop signals the goroutine to exit and waits for it to do so.
func (t *Ticker) Stop() {
	close(t.stopCh)
	<-t.doneCh
}
