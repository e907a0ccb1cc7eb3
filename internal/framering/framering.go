// Package framering implements the bounded ordered queue of timestamped
// camera frames that backs camera/screen synchronization.
package framering

import (
	"sync"

	"github.com/brightloop/screencap/internal/models"
)

// Capacity is the maximum number of buffered frames (spec §3).
const Capacity = 300

// Buffer is the SyncedFrameBuffer: an append-only, pts-ordered, bounded
// queue plus a last-frame cache that survives structural pops.
type Buffer struct {
	mu         sync.Mutex
	frames     []models.CameraFrame
	lastFrame  *models.CameraFrame
	minQueued  int
	maxQueued  int
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Push appends a frame in arrival order. Frames arrive already pts-ordered
// (capture-source guarantee); overflow drops the oldest frame. lastFrame is
// updated on every push regardless of whether the buffer later pops it.
func (b *Buffer) Push(f models.CameraFrame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frames = append(b.frames, f)
	if len(b.frames) > Capacity {
		b.frames = b.frames[1:]
	}
	cp := f
	b.lastFrame = &cp
	b.updateWatermarks()
}

// PopUpTo removes and returns the largest-indexed frame with pts <= ptsNs,
// along with every earlier frame (discarded), matching the Camera Sync
// Engine's scan-and-pop contract (spec §4.2 step 2). ok is false if no
// frame in the buffer satisfies pts <= ptsNs.
func (b *Buffer) PopUpTo(ptsNs uint64) (frame models.CameraFrame, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, f := range b.frames {
		if f.PTSNs <= ptsNs {
			idx = i
		} else {
			break
		}
	}
	if idx < 0 {
		return models.CameraFrame{}, false
	}
	frame = b.frames[idx]
	b.frames = b.frames[idx+1:]
	b.updateWatermarks()
	return frame, true
}

// Last returns the most recently pushed frame, if any.
func (b *Buffer) Last() (models.CameraFrame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastFrame == nil {
		return models.CameraFrame{}, false
	}
	return *b.lastFrame, true
}

// Len returns the current buffer length.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Reset clears the buffer and the last-frame cache, used when sync
// transitions from disabled to enabled (spec §4.2).
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = nil
	b.lastFrame = nil
	b.minQueued, b.maxQueued = 0, 0
}

// Watermarks returns the minimum and maximum observed queue lengths.
func (b *Buffer) Watermarks() (min, max int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.minQueued, b.maxQueued
}

func (b *Buffer) updateWatermarks() {
	n := len(b.frames)
	if n < b.minQueued || b.maxQueued == 0 {
		b.minQueued = n
	}
	if n > b.maxQueued {
		b.maxQueued = n
	}
}
