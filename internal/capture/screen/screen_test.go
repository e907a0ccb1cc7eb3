package screen

import (
	"sync"
	"testing"

	"github.com/brightloop/screencap/internal/models"
)

func TestFakeSource_DeliversFramesInOrder(t *testing.T) {
	frames := []Frame{{PTSNs: 0}, {PTSNs: 33_000_000}, {PTSNs: 66_000_000}}
	src := NewFakeSource(frames, 640, 480)

	var mu sync.Mutex
	var got []uint64
	done := make(chan struct{})

	count := 0
	err := src.Start(func(f Frame) {
		mu.Lock()
		got = append(got, f.PTSNs)
		count++
		if count == len(frames) {
			close(done)
		}
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-done
	src.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i, pts := range got {
		if pts != frames[i].PTSNs {
			t.Errorf("frame %d: got pts %d, want %d", i, pts, frames[i].PTSNs)
		}
	}
}

func TestFakeSource_FrameSize(t *testing.T) {
	src := NewFakeSource(nil, 100, 50)
	if got, want := src.FrameSize(), 100*50*4; got != want {
		t.Errorf("FrameSize() = %d, want %d", got, want)
	}
}

func TestFakeSource_AudioLayoutIsZeroWithoutAudioBlocks(t *testing.T) {
	src := NewFakeSource(nil, 100, 50)
	if layout := src.AudioLayout(); layout.SampleRateHz != 0 {
		t.Errorf("AudioLayout() = %+v, want zero value", layout)
	}
}

func TestFakeSource_AudioLayoutReportsInterleavedStereo(t *testing.T) {
	src := NewFakeSource(nil, 100, 50)
	src.AudioBlock = []AudioBlock{{PTSNs: 0}}
	layout := src.AudioLayout()
	if layout.SampleRateHz != 48000 || layout.Channels != 2 || layout.Layout != models.Interleaved {
		t.Errorf("AudioLayout() = %+v, want 48000Hz stereo interleaved", layout)
	}
}
