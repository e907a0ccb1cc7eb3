// Package camerasync matches buffered camera frames to incoming screen
// presentation timestamps, adaptively tracking the lag between the two
// capture pipelines so the emitted preview stays visually synchronized
// with the screen recording (spec §4.2).
package camerasync

import (
	"sync/atomic"

	"github.com/brightloop/screencap/internal/framering"
	"github.com/brightloop/screencap/internal/models"
)

const (
	// targetLagNs is the desired camera-behind-screen lag the proportional
	// controller converges toward.
	targetLagNs = 5_000_000 // 5ms
	// maxOffsetNs and minOffsetNs bound the adaptive offset.
	maxOffsetNs = 120_000_000 // 120ms
	minOffsetNs = 0
	// initialOffsetNs seeds the offset before any convergence has happened.
	initialOffsetNs = 30_000_000 // 30ms
	// leadThresholdNs triggers the upward bias when the newest buffered
	// frame is this far behind the screen clock.
	leadThresholdNs = 60_000_000 // 60ms
	// minStepNs is the smallest adjustment the proportional step applies.
	minStepNs = 1_000 // 1us
)

// Handle owns the camera frame buffer plus the atomics and mutex-protected
// state three independent callers (camera reader, screen callback, UI
// emitter) read and write without a shared lock on the hot path.
type Handle struct {
	buf *framering.Buffer

	syncEnabled     atomic.Bool
	frameInCount    atomic.Uint64
	frameOutCount   atomic.Uint64
	screenTickCount atomic.Uint64
	droppedFrames   atomic.Uint64
	repeatedFrames  atomic.Uint64
	targetOffsetNs  atomic.Uint64

	emit func(models.CameraFrame)
}

// New returns a Handle with sync disabled and the offset seeded to its
// initial value. emit is called for every frame the engine decides should
// reach the UI preview, both in disabled (passthrough) and enabled
// (synchronized) mode.
func New(emit func(models.CameraFrame)) *Handle {
	h := &Handle{buf: framering.New(), emit: emit}
	h.targetOffsetNs.Store(initialOffsetNs)
	return h
}

// SetEnabled toggles sync mode. Enabling resets the buffer and counters
// (spec §4.2: "When sync becomes enabled, the buffer is cleared and
// counters reset").
func (h *Handle) SetEnabled(enabled bool) {
	wasEnabled := h.syncEnabled.Swap(enabled)
	if enabled && !wasEnabled {
		h.buf.Reset()
		h.frameInCount.Store(0)
		h.frameOutCount.Store(0)
		h.screenTickCount.Store(0)
		h.droppedFrames.Store(0)
		h.repeatedFrames.Store(0)
		h.targetOffsetNs.Store(initialOffsetNs)
	}
}

// Enabled reports whether sync mode is active.
func (h *Handle) Enabled() bool { return h.syncEnabled.Load() }

// PushFrame appends a camera frame to the buffer. When sync is disabled,
// the frame is emitted immediately (preview-only passthrough); frameOut is
// counted either way it leaves via emit.
func (h *Handle) PushFrame(f models.CameraFrame) {
	h.frameInCount.Add(1)
	h.buf.Push(f)

	if !h.syncEnabled.Load() {
		h.frameOutCount.Add(1)
		if h.emit != nil {
			h.emit(f)
		}
	}
}

// OnScreenPTS is invoked for every screen presentation timestamp. It scans
// the buffer, emits the best camera frame (or repeats the last one),
// updates the adaptive offset, and increments counters (spec §4.2 steps
// 1-4). It is a no-op on the buffer-pop path when sync is disabled.
func (h *Handle) OnScreenPTS(screenPTSNs uint64) {
	h.screenTickCount.Add(1)
	if !h.syncEnabled.Load() {
		return
	}

	offset := h.targetOffsetNs.Load()
	var adjusted uint64
	if screenPTSNs > offset {
		adjusted = screenPTSNs - offset
	}

	frame, ok := h.buf.PopUpTo(adjusted)
	if !ok {
		if last, haveLast := h.buf.Last(); haveLast {
			h.repeatedFrames.Add(1)
			h.frameOutCount.Add(1)
			if h.emit != nil {
				h.emit(last)
			}
		} else {
			h.droppedFrames.Add(1)
		}
		return
	}

	h.frameOutCount.Add(1)
	if h.emit != nil {
		h.emit(frame)
	}

	var delta int64
	if screenPTSNs >= frame.PTSNs {
		delta = int64(screenPTSNs - frame.PTSNs)
	} else {
		delta = -int64(frame.PTSNs - screenPTSNs)
	}
	h.adjustOffset(delta, screenPTSNs)
}

// adjustOffset applies the ⅛ proportional step toward targetLagNs, clamps
// to [minOffsetNs, maxOffsetNs], and applies the upward lead bias.
func (h *Handle) adjustOffset(observedDeltaNs int64, screenPTSNs uint64) {
	current := int64(h.targetOffsetNs.Load())
	err := observedDeltaNs - targetLagNs

	step := err / 8
	if step > 0 && step < minStepNs {
		step = minStepNs
	}
	if step < 0 && step > -minStepNs {
		step = -minStepNs
	}
	next := current - step

	if last, ok := h.buf.Last(); ok {
		var lead int64
		if screenPTSNs >= last.PTSNs {
			lead = int64(screenPTSNs - last.PTSNs)
		}
		if lead > leadThresholdNs {
			next += lead / 16
		}
	}

	if next < minOffsetNs {
		next = minOffsetNs
	}
	if next > maxOffsetNs {
		next = maxOffsetNs
	}
	h.targetOffsetNs.Store(uint64(next))
}

// Counters snapshots the atomics for diagnostics and tests.
type Counters struct {
	FrameIn, FrameOut, ScreenTick, Dropped, Repeated uint64
	TargetOffsetNs                                   uint64
}

func (h *Handle) Counters() Counters {
	return Counters{
		FrameIn:        h.frameInCount.Load(),
		FrameOut:       h.frameOutCount.Load(),
		ScreenTick:     h.screenTickCount.Load(),
		Dropped:        h.droppedFrames.Load(),
		Repeated:       h.repeatedFrames.Load(),
		TargetOffsetNs: h.targetOffsetNs.Load(),
	}
}

// BufferLen exposes the current backing buffer length for invariant tests.
func (h *Handle) BufferLen() int { return h.buf.Len() }
