package sessionclock

import (
	"testing"
	"time"
)

func TestClock_PauseResumeAccumulates(t *testing.T) {
	c := New()
	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Pause()
	paused := c.Elapsed()

	time.Sleep(20 * time.Millisecond) // must not count while paused
	if c.Elapsed() != paused {
		t.Errorf("elapsed changed while paused: %v vs %v", c.Elapsed(), paused)
	}

	c.Resume()
	time.Sleep(20 * time.Millisecond)
	c.Pause()
	final := c.Elapsed()

	if final < 35*time.Millisecond || final > 80*time.Millisecond {
		t.Errorf("elapsed = %v, want roughly 40ms (two 20ms runs)", final)
	}
}

func TestClock_StartResetsAccumulated(t *testing.T) {
	c := New()
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Pause()

	c.Start()
	if c.Elapsed() > 5*time.Millisecond {
		t.Errorf("Start should reset accumulated duration, got %v", c.Elapsed())
	}
}

func TestClock_DoubleResumeIsNoop(t *testing.T) {
	c := New()
	c.Start()
	c.Resume() // already running, must not reset startInstant
	time.Sleep(10 * time.Millisecond)
	if c.Elapsed() < 8*time.Millisecond {
		t.Errorf("double Resume should not reset the running interval, got %v", c.Elapsed())
	}
}
