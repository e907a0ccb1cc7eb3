package framering

import (
	"testing"

	"github.com/brightloop/screencap/internal/models"
)

func frame(pts uint64) models.CameraFrame {
	return models.CameraFrame{ID: pts, PTSNs: pts, Format: "jpeg"}
}

func TestBuffer_PushOverflowDropsOldest(t *testing.T) {
	b := New()
	for i := 0; i < Capacity+10; i++ {
		b.Push(frame(uint64(i)))
	}
	if got := b.Len(); got != Capacity {
		t.Fatalf("Len() = %d, want %d", got, Capacity)
	}
	f, ok := b.PopUpTo(9) // the first 10 pushed (0..9) should have been dropped
	if ok {
		t.Errorf("expected no frame with pts <= 9 after overflow, got %+v", f)
	}
}

func TestBuffer_LastSurvivesPop(t *testing.T) {
	b := New()
	b.Push(frame(10))
	b.Push(frame(20))
	b.Push(frame(30))

	if _, ok := b.PopUpTo(20); !ok {
		t.Fatal("expected a frame <= 20")
	}

	last, ok := b.Last()
	if !ok {
		t.Fatal("expected a last frame")
	}
	if last.PTSNs != 30 {
		t.Errorf("Last().PTSNs = %d, want 30 (push-time cache, unaffected by pop)", last.PTSNs)
	}
}

func TestBuffer_PopUpToReturnsLargestIndexed(t *testing.T) {
	b := New()
	b.Push(frame(0))
	b.Push(frame(33))
	b.Push(frame(66))
	b.Push(frame(99))

	f, ok := b.PopUpTo(70)
	if !ok {
		t.Fatal("expected a match")
	}
	if f.PTSNs != 66 {
		t.Errorf("PopUpTo(70) = %d, want 66", f.PTSNs)
	}
	if b.Len() != 1 {
		t.Errorf("Len() after pop = %d, want 1 (only 99 remains)", b.Len())
	}
}

func TestBuffer_PopUpToNoMatch(t *testing.T) {
	b := New()
	b.Push(frame(100))
	if _, ok := b.PopUpTo(50); ok {
		t.Error("expected no match when all frames are newer than the target")
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := New()
	b.Push(frame(1))
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
	if _, ok := b.Last(); ok {
		t.Error("expected no last frame after Reset")
	}
}
