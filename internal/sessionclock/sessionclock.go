// Package sessionclock implements the pause-aware accumulated-duration
// clock described in spec §3/§4.8: RecordingClock.
package sessionclock

import (
	"sync"
	"time"
)

// Clock tracks elapsed recording time across pause/resume cycles.
// Invariant: Elapsed() == accumulated + (running ? now-startInstant : 0).
type Clock struct {
	mu           sync.Mutex
	startInstant time.Time
	accumulated  time.Duration
	running      bool
}

// New returns a stopped Clock with zero accumulated duration.
func New() *Clock {
	return &Clock{}
}

// Start begins timing from now, resetting accumulated duration to zero.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startInstant = time.Now()
	c.accumulated = 0
	c.running = true
}

// Pause folds the running interval into accumulated and stops timing.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.accumulated += time.Since(c.startInstant)
	c.running = false
}

// Resume restarts timing from now, preserving the accumulated duration.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.startInstant = time.Now()
	c.running = true
}

// Stop folds any running interval into accumulated and stops timing; the
// clock retains its final Elapsed() value until the next Start.
func (c *Clock) Stop() {
	c.Pause()
}

// Elapsed returns the total elapsed duration, live if currently running.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return c.accumulated + time.Since(c.startInstant)
	}
	return c.accumulated
}

// Running reports whether the clock is currently accumulating time.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
