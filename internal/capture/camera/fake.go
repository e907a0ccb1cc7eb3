package camera

import (
	"time"

	"github.com/brightloop/screencap/internal/models"
)

// FakeSource replays a fixed sequence of CameraFrame values, letting the
// sync engine and session be tested without a real device.
type FakeSource struct {
	Frames   []models.CameraFrame
	Interval time.Duration

	stopCh chan struct{}
}

func NewFakeSource(frames []models.CameraFrame) *FakeSource {
	return &FakeSource{Frames: frames}
}

func (f *FakeSource) Start(onFrame func(models.CameraFrame)) error {
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
	}()
	return nil
}

func (f *FakeSource) Stop() error {
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}
