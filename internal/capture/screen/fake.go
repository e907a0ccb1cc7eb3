package screen

import (
	"time"

	"github.com/brightloop/screencap/internal/models"
)

// FakeSource replays a fixed sequence of frames/audio blocks at a
// configurable cadence, letting the pipeline and sync engine be tested
// without invoking ffmpeg (spec §9: "testable with fake sources that
// replay timestamped frames").
type FakeSource struct {
	Frames     []Frame
	AudioBlock []AudioBlock
	Interval   time.Duration

	width, height int
	stopCh        chan struct{}
}

// NewFakeSource returns a FakeSource with the given pre-built frame
// sequence and dimensions (reported by FrameSize, Width and Height).
func NewFakeSource(frames []Frame, width, height int) *FakeSource {
	return &FakeSource{Frames: frames, width: width, height: height}
}

func (f *FakeSource) FrameSize() int { return f.width * f.height * 4 }
func (f *FakeSource) Width() int     { return f.width }
func (f *FakeSource) Height() int    { return f.height }

// AudioLayout reports a fixed 48kHz stereo interleaved layout once any
// audio blocks have been configured, matching the real source's discovered
// format, or the zero value otherwise.
func (f *FakeSource) AudioLayout() models.AudioLayout {
	if len(f.AudioBlock) == 0 {
		return models.AudioLayout{}
	}
	return models.AudioLayout{SampleRateHz: 48000, Channels: 2, Layout: models.Interleaved}
}

// Start replays every configured frame/audio block, in order, pacing by
// Interval if set (zero delivers them immediately).
func (f *FakeSource) Start(onFrame func(Frame), onAudio func(AudioBlock)) error {
	f.stopCh = make(chan struct{})
	go func() {
		for _, fr := range f.Frames {
			select {
			case <-f.stopCh:
				return
			default:
			}
			if onFrame != nil {
				onFrame(fr)
			}
			if f.Interval > 0 {
				time.Sleep(f.Interval)
			}
		}
		for _, ab := range f.AudioBlock {
			select {
			case <-f.stopCh:
				return
			default:
			}
			if onAudio != nil {
				onAudio(ab)
			}
		}
	}()
	return nil
}

func (f *FakeSource) Stop() error {
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}
