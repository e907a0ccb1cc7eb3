// Package camera implements the Camera Capture Source (spec §4.4/§9):
// a stream of timestamped JPEG CameraFrame values delivered to the Camera
// Sync Engine, isolated behind the Source interface so tests can replay
// frames without a real device.
package camera

import (
	"bufio"
	"bytes"
	"image/jpeg"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"

	"github.com/nfnt/resize"

	"github.com/brightloop/screencap/internal/models"
	"github.com/brightloop/screencap/internal/timebase"
)

// Source produces a stream of CameraFrame values until Stop.
type Source interface {
	Start(onFrame func(models.CameraFrame)) error
	Stop() error
}

// FFmpegSource captures an MJPEG stream from an avfoundation camera device
// and splits it into individual JPEG frames. The MJPEG demultiplexing is
// grounded on vincent99-velocipi's splitJPEGs (server/dvr/dvr.go), which
// scans a concatenated MJPEG byte stream for FFD8/FFD9 delimiters; that
// function publishes to a single-slot frameEntry, while this one emits a
// CameraFrame with a unified-domain timestamp and an optional downscale
// ahead of the JSON/base64 wire boundary.
type FFmpegSource struct {
	encoderPath  string
	deviceTarget string
	fps          int
	previewWidth int // 0 disables resizing

	clock *timebase.Clock

	mu      sync.Mutex
	cmd     *exec.Cmd
	nextID  uint64
	stopped bool
	done    chan struct{}
}

// NewFFmpegSource returns a Source reading an MJPEG stream from
// deviceTarget at fps. previewWidth, if non-zero, downsamples each frame
// to that width before it is re-encoded as JPEG.
func NewFFmpegSource(encoderPath, deviceTarget string, fps, previewWidth int) *FFmpegSource {
	return &FFmpegSource{
		encoderPath:  encoderPath,
		deviceTarget: deviceTarget,
		fps:          fps,
		previewWidth: previewWidth,
		clock:        timebase.New(),
	}
}

// Start launches the avfoundation MJPEG capture and begins splitting and
// emitting frames.
func (s *FFmpegSource) Start(onFrame func(models.CameraFrame)) error {
	fps := s.fps
	if fps <= 0 {
		fps = 30
	}
	args := []string{
		"-f", "avfoundation",
		"-framerate", strconv.Itoa(fps),
		"-i", s.deviceTarget + ":none",
		"-f", "mjpeg",
		"pipe:1",
	}

	s.mu.Lock()
	s.cmd = exec.Command(s.encoderPath, args...)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cmd.Stderr = logWriter{}
	if err := s.cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.splitJPEGs(stdout, onFrame)
	}()

	return nil
}

// splitJPEGs reads a concatenated MJPEG stream and emits one CameraFrame
// per delimited JPEG image, assigning a strictly increasing ID and the
// arrival-time PTS in the unified nanosecond domain.
func (s *FFmpegSource) splitJPEGs(r io.Reader, onFrame func(models.CameraFrame)) {
	br := bufio.NewReaderSize(r, 256*1024)
	var frame []byte
	inFrame := false

	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if !inFrame {
			if b == 0xFF {
				next, err := br.ReadByte()
				if err != nil {
					return
				}
				if next == 0xD8 {
					frame = []byte{0xFF, 0xD8}
					inFrame = true
				}
			}
			continue
		}
		frame = append(frame, b)
		if len(frame) >= 4 && frame[len(frame)-2] == 0xFF && frame[len(frame)-1] == 0xD9 {
			s.emit(frame, onFrame)
			frame = nil
			inFrame = false
		}
	}
}

func (s *FFmpegSource) emit(jpegBytes []byte, onFrame func(models.CameraFrame)) {
	payload := jpegBytes
	width, height := 0, 0

	if s.previewWidth > 0 {
		if resized, w, h, err := downscale(jpegBytes, s.previewWidth); err == nil {
			payload, width, height = resized, w, h
		}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	if onFrame != nil {
		onFrame(models.CameraFrame{
			ID:      id,
			Width:   width,
			Height:  height,
			Format:  "jpeg",
			Payload: payload,
			PTSNs:   s.clock.NowNs(),
		})
	}
}

// downscale decodes a JPEG, resizes it to targetWidth preserving aspect
// ratio via github.com/nfnt/resize, and re-encodes it as JPEG.
func downscale(jpegBytes []byte, targetWidth int) (out []byte, width, height int, err error) {
	img, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, 0, 0, err
	}

	resized := resize.Resize(uint(targetWidth), 0, img, resize.Lanczos3)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 80}); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), bounds.Dx(), bounds.Dy(), nil
}

// Stop terminates the capture subprocess.
func (s *FFmpegSource) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cmd := s.cmd
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
	return nil
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Printf("camera: %s", p)
	return len(p), nil
}
