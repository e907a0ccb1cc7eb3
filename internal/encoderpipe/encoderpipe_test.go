package encoderpipe

import (
	"testing"

	"github.com/brightloop/screencap/internal/coreerr"
)

func TestPipe_WriteBeforeStartReturnsError(t *testing.T) {
	p := New("ffmpeg", "/tmp/out.mp4", 1920, 1080, 30, false)
	err := p.Write([]byte{0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected an error writing to an unstarted pipe")
	}
	if coreerr.KindOf(err) != coreerr.Recording {
		t.Errorf("expected Recording error kind, got %v", coreerr.KindOf(err))
	}
}

func TestPipe_StopBeforeStartIsNoop(t *testing.T) {
	p := New("ffmpeg", "/tmp/out.mp4", 1920, 1080, 30, false)
	if err := p.Stop(); err != nil {
		t.Errorf("expected Stop on an unstarted pipe to be a no-op, got %v", err)
	}
}
