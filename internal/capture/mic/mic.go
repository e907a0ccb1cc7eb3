// Package mic implements the Microphone Capture Source (spec §4.4): a
// subprocess of the external encoder reading the resolved microphone
// device and writing interleaved s16le PCM to its stdout, adapted from
// internal/audio.Recorder's pw-record child-process shape to ffmpeg's
// avfoundation audio input.
package mic

import (
	"bufio"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightloop/screencap/internal/procutil"
	"github.com/brightloop/screencap/internal/timebase"
)

// gracefulStop is spec §5's "Stop-microphone-subprocess: 3s graceful".
const gracefulStop = 3 * time.Second

// Source produces interleaved s16le PCM blocks from a microphone device.
type Source interface {
	// Start begins capture. onBlock is called with each PCM block read
	// from the subprocess; firstByteNs reports the unified-domain
	// timestamp of the first byte seen, used by the muxer for start-skew
	// alignment (spec §4.4/§4.6).
	Start(onBlock func(data []byte)) error
	Stop() error
	FirstByteNs() (uint64, bool)
}

// FFmpegSource captures 48kHz stereo s16le PCM from an avfoundation audio
// device via the external encoder.
type FFmpegSource struct {
	encoderPath string
	deviceTarget string

	clock *timebase.Clock

	mu          sync.Mutex
	cmd         *exec.Cmd
	stopped     bool
	done        chan struct{}
	firstByteNs atomic.Uint64
	haveFirst   atomic.Bool
}

func NewFFmpegSource(encoderPath, deviceTarget string) *FFmpegSource {
	return &FFmpegSource{encoderPath: encoderPath, deviceTarget: deviceTarget, clock: timebase.New()}
}

func (s *FFmpegSource) Start(onBlock func(data []byte)) error {
	args := []string{
		"-f", "avfoundation",
		"-i", ":" + s.deviceTarget,
		"-ar", "48000",
		"-ac", "2",
		"-f", "s16le",
		"pipe:1",
	}

	s.mu.Lock()
	s.cmd = exec.Command(s.encoderPath, args...)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.readBlocks(stdout, onBlock)
	}()

	return nil
}

func (s *FFmpegSource) readBlocks(r io.Reader, onBlock func([]byte)) {
	const blockBytes = 4096
	br := bufio.NewReaderSize(r, blockBytes)
	chunk := make([]byte, blockBytes)

	for {
		n, err := br.Read(chunk)
		if n > 0 {
			if s.haveFirst.CompareAndSwap(false, true) {
				s.firstByteNs.Store(s.clock.NowNs())
			}
			data := make([]byte, n)
			copy(data, chunk[:n])
			if onBlock != nil {
				onBlock(data)
			}
		}
		if err != nil {
			return
		}
	}
}

// FirstByteNs returns the timestamp of the first byte seen, if any.
func (s *FFmpegSource) FirstByteNs() (uint64, bool) {
	if !s.haveFirst.Load() {
		return 0, false
	}
	return s.firstByteNs.Load(), true
}

func (s *FFmpegSource) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cmd := s.cmd
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return procutil.StopEscalating(cmd, gracefulStop)
}
