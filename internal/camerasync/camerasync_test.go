package camerasync

import (
	"testing"

	"github.com/brightloop/screencap/internal/models"
)

func TestHandle_PassthroughWhenDisabled(t *testing.T) {
	var emitted []models.CameraFrame
	h := New(func(f models.CameraFrame) { emitted = append(emitted, f) })

	h.PushFrame(models.CameraFrame{ID: 1, PTSNs: 10})
	h.PushFrame(models.CameraFrame{ID: 2, PTSNs: 20})

	if len(emitted) != 2 {
		t.Fatalf("expected every push to emit when sync disabled, got %d emissions", len(emitted))
	}
}

func TestHandle_EnabledPushAloneNeverEmits(t *testing.T) {
	var emitted []models.CameraFrame
	h := New(func(f models.CameraFrame) { emitted = append(emitted, f) })
	h.SetEnabled(true)

	h.PushFrame(models.CameraFrame{ID: 1, PTSNs: 10})
	h.PushFrame(models.CameraFrame{ID: 2, PTSNs: 20})

	if len(emitted) != 0 {
		t.Fatalf("expected no emission from pushes alone while enabled, got %d", len(emitted))
	}
}

func TestHandle_ConvergesToTargetLag(t *testing.T) {
	var emitted []models.CameraFrame
	h := New(func(f models.CameraFrame) { emitted = append(emitted, f) })
	h.SetEnabled(true)

	const frames = 60
	const stepNs = uint64(33_000_000) // ~33ms cadence
	const skewNs = uint64(20_000_000) // 20ms deterministic offset per spec scenario 4

	var deltas []int64
	for i := 0; i < frames; i++ {
		cameraPTS := uint64(i) * stepNs
		screenPTS := cameraPTS + skewNs

		h.PushFrame(models.CameraFrame{ID: uint64(i), PTSNs: cameraPTS})
		before := len(emitted)
		h.OnScreenPTS(screenPTS)
		if len(emitted) > before {
			got := emitted[len(emitted)-1]
			deltas = append(deltas, int64(screenPTS)-int64(got.PTSNs))
		}
	}

	counters := h.Counters()
	if counters.Dropped != 0 {
		t.Errorf("expected no drops, got %d", counters.Dropped)
	}

	withinTolerance := 0
	for _, d := range deltas[len(deltas)/2:] { // only count the converged tail
		diff := d - 5_000_000
		if diff < 0 {
			diff = -diff
		}
		if diff < 2_000_000 {
			withinTolerance++
		}
	}
	tail := len(deltas) - len(deltas)/2
	if tail == 0 {
		t.Fatal("no emitted frames to evaluate")
	}
	ratio := float64(withinTolerance) / float64(tail)
	if ratio < 0.90 {
		t.Errorf("only %.0f%% of converged-tail frames within 2ms of 5ms target lag", ratio*100)
	}
}

func TestHandle_BufferNeverExceedsCapacity(t *testing.T) {
	h := New(nil)
	h.SetEnabled(true)
	for i := 0; i < 1000; i++ {
		h.PushFrame(models.CameraFrame{ID: uint64(i), PTSNs: uint64(i) * 1_000_000})
	}
	if h.BufferLen() > 300 {
		t.Errorf("buffer length %d exceeds capacity 300", h.BufferLen())
	}
}

func TestHandle_RepeatsLastFrameWhenNoneMatch(t *testing.T) {
	var emitted []models.CameraFrame
	h := New(func(f models.CameraFrame) { emitted = append(emitted, f) })
	h.SetEnabled(true)

	h.PushFrame(models.CameraFrame{ID: 1, PTSNs: 1_000_000})
	h.OnScreenPTS(1_000_000) // offset starts at 30ms so nothing matches yet; repeats the last frame

	before := len(emitted)
	h.OnScreenPTS(1_000_001) // still nothing matches, repeats again
	if len(emitted) <= before {
		t.Fatal("expected the last frame to be repeated")
	}
	if h.Counters().Repeated == 0 {
		t.Error("expected Repeated counter to increment")
	}
}

func TestHandle_SetEnabledResetsState(t *testing.T) {
	h := New(nil)
	h.SetEnabled(true)
	h.PushFrame(models.CameraFrame{ID: 1, PTSNs: 1})
	h.OnScreenPTS(100_000_000)

	h.SetEnabled(false)
	h.SetEnabled(true)

	if h.BufferLen() != 0 {
		t.Errorf("expected buffer reset on re-enable, got length %d", h.BufferLen())
	}
	c := h.Counters()
	if c.FrameIn != 0 || c.FrameOut != 0 {
		t.Errorf("expected counters reset on re-enable, got %+v", c)
	}
}
