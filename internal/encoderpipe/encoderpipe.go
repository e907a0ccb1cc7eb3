// Package encoderpipe implements the Video Encoder Pipe (spec §4.5): a
// child process reading raw BGRA frames on its stdin and writing a
// video-only MP4 to disk, grounded on internal/recorder.go's subprocess
// lifecycle (start under a ready/started handshake, escalating stop).
package encoderpipe

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/brightloop/screencap/internal/coreerr"
	"github.com/brightloop/screencap/internal/procutil"
)

// gracefulStop is spec §5's "Stop-encoder: 5s graceful...".
const gracefulStop = 5 * time.Second

// Pipe owns the encoder child process and its stdin.
type Pipe struct {
	encoderPath string
	width       int
	height      int
	frameRate   int
	hwAccel     bool
	outputPath  string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	started bool
}

// New returns a Pipe configured to encode width x height x frameRate BGRA
// to outputPath using H.264 ultrafast/CRF23 (spec §4.5).
func New(encoderPath, outputPath string, width, height, frameRate int, hwAccel bool) *Pipe {
	return &Pipe{
		encoderPath: encoderPath,
		outputPath:  outputPath,
		width:       width,
		height:      height,
		frameRate:   frameRate,
		hwAccel:     hwAccel,
	}
}

// Start launches the encoder subprocess with its stdin piped for raw BGRA
// frames.
func (p *Pipe) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	size := fmt.Sprintf("%dx%d", p.width, p.height)
	args := []string{
		"-f", "rawvideo",
		"-pixel_format", "bgra",
		"-video_size", size,
		"-framerate", strconv.Itoa(p.frameRate),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
	}
	// hwAccel only appends "-allow_sw 1"; the codec stays libx264, so no
	// hardware encoder is selected.
	if p.hwAccel {
		args = append(args, "-allow_sw", "1")
	}
	args = append(args, "-y", p.outputPath)

	p.cmd = exec.Command(p.encoderPath, args...)
	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return coreerr.Wrap(coreerr.Encoding, "open encoder stdin", err)
	}
	p.stdin = stdin

	if err := p.cmd.Start(); err != nil {
		return coreerr.Wrap(coreerr.Recording, "start encoder pipe", err)
	}
	p.started = true
	return nil
}

// Write sends one raw BGRA frame to the encoder. Writes may block briefly
// if the child is slow (spec §5); tolerated since the caller already
// buffers via the screen source.
func (p *Pipe) Write(frame []byte) error {
	p.mu.Lock()
	stdin := p.stdin
	p.mu.Unlock()
	if stdin == nil {
		return coreerr.New(coreerr.Recording, "encoder pipe not started")
	}
	_, err := stdin.Write(frame)
	if err != nil {
		return coreerr.Wrap(coreerr.Recording, "write frame to encoder pipe", err)
	}
	return nil
}

// Stop closes stdin (triggering a clean exit) and escalates through
// SIGINT -> SIGTERM -> SIGKILL if the child doesn't exit within the
// graceful budget.
func (p *Pipe) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	stdin := p.stdin
	cmd := p.cmd
	p.started = false
	p.mu.Unlock()

	if stdin != nil {
		stdin.Close()
	}
	return procutil.StopEscalating(cmd, gracefulStop)
}
