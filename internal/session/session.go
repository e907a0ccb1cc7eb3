// Package session implements the Session State Machine (spec §4.1): the
// Recorder orchestrates the capture sources, the Video Encoder Pipe, the
// raw audio sinks, the Camera Sync Engine, the session clock and the
// elapsed-time ticker, and on stop hands off to the muxer and file-save
// stage. Grounded on the teacher's Recorder in internal/recorder/recorder.go,
// restructured from process-restart pause/resume into flag-based pause
// (spec §9's resolved Open Question) and from single ffmpeg-per-source
// invocations into the narrow Source interfaces spec §9 calls for.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightloop/screencap/internal/audiosink"
	"github.com/brightloop/screencap/internal/camerasync"
	"github.com/brightloop/screencap/internal/capture/camera"
	"github.com/brightloop/screencap/internal/capture/mic"
	"github.com/brightloop/screencap/internal/capture/screen"
	"github.com/brightloop/screencap/internal/coreerr"
	"github.com/brightloop/screencap/internal/encoderpipe"
	"github.com/brightloop/screencap/internal/eventbus"
	"github.com/brightloop/screencap/internal/filesave"
	"github.com/brightloop/screencap/internal/models"
	"github.com/brightloop/screencap/internal/muxer"
	"github.com/brightloop/screencap/internal/sessionclock"
	"github.com/brightloop/screencap/internal/ticker"
)

const (
	micRateTolerance = 0.001 // 0.1%, spec §4.6 step 2
	defaultMicGain   = 1.8

	// defaultCameraPreviewWidth is the overlay downscale target used when
	// RecordingOptions.CameraPreviewWidth is unset. Far smaller than any
	// screen recording width so the camera preview stays low-latency
	// instead of being upscaled to the screen's resolution.
	defaultCameraPreviewWidth = 320
)

// ScreenSourceFactory, CameraSourceFactory and MicSourceFactory let tests
// substitute fake sources for the real ffmpeg-backed ones.
type ScreenSourceFactory func(encoderPath string, opts models.RecordingOptions) screen.Source
type CameraSourceFactory func(encoderPath string, opts models.RecordingOptions) camera.Source
type MicSourceFactory func(encoderPath string, opts models.RecordingOptions) mic.Source

// encoderPipe is the narrow slice of *encoderpipe.Pipe the session depends
// on, so tests can substitute a fake and exercise the state machine
// without spawning a real ffmpeg child.
type encoderPipe interface {
	Start() error
	Write(frame []byte) error
	Stop() error
}

// PipeFactory lets tests substitute a fake encoder pipe.
type PipeFactory func(encoderPath, outputPath string, width, height, frameRate int, hwAccel bool) encoderPipe

// MergeFunc is the muxer entry point Stop calls into, narrowed to a
// function value so tests can substitute a fake mux result without
// spawning a real ffmpeg process.
type MergeFunc func(opts muxer.MergeOptions) (*muxer.MergeResult, error)

// Recorder is the process-wide recording session (spec §4.1: "exactly one
// exists").
type Recorder struct {
	mu    sync.Mutex
	state models.SessionState

	encoderPath string
	bus         *eventbus.Bus
	clock       *sessionclock.Clock
	syncHandle  *camerasync.Handle
	elapsed     *ticker.Ticker

	micMuted      atomic.Bool
	sysAudioMuted atomic.Bool
	recordingPaused atomic.Bool

	screenSrc screen.Source
	cameraSrc camera.Source
	micSrc    mic.Source
	pipe      encoderPipe
	micSink   *audiosink.Sink
	sysSink   *audiosink.Sink

	sysAudioFirstByteNs atomic.Uint64
	haveSysAudioFirst   atomic.Bool

	tempDir string
	opts    models.RecordingOptions

	newScreenSource ScreenSourceFactory
	newCameraSource CameraSourceFactory
	newMicSource    MicSourceFactory
	newPipe         PipeFactory
	mergeFunc       MergeFunc
	mkdirTemp       func() (string, error)
}

// New returns an idle Recorder wired to publish on bus and to spawn the
// external encoder at encoderPath for every capture subprocess.
func New(encoderPath string, bus *eventbus.Bus) *Recorder {
	r := &Recorder{
		encoderPath: encoderPath,
		bus:         bus,
		clock:       sessionclock.New(),
		newScreenSource: func(enc string, o models.RecordingOptions) screen.Source {
			return screen.NewFFmpegSource(enc, o.ScreenTarget, o.SystemAudioTarget, o.Width, o.Height, o.FrameRate)
		},
		newCameraSource: func(enc string, o models.RecordingOptions) camera.Source {
			previewWidth := o.CameraPreviewWidth
			if previewWidth <= 0 {
				previewWidth = defaultCameraPreviewWidth
			}
			return camera.NewFFmpegSource(enc, o.CameraTarget, o.FrameRate, previewWidth)
		},
		newMicSource: func(enc string, o models.RecordingOptions) mic.Source {
			return mic.NewFFmpegSource(enc, o.MicTarget)
		},
		newPipe: func(enc, out string, w, h, fps int, hwAccel bool) encoderPipe {
			return encoderpipe.New(enc, out, w, h, fps, hwAccel)
		},
		mergeFunc: muxer.Merge,
		mkdirTemp: func() (string, error) { return os.MkdirTemp("", "screencap-session-") },
	}
	r.syncHandle = camerasync.New(func(f models.CameraFrame) {
		r.bus.Publish(eventbus.Event{Kind: eventbus.CameraFrameEvent, Frame: f})
	})
	return r
}

// State returns a snapshot of the current session state.
func (r *Recorder) State() models.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start spawns all enabled capture sources and the encoder pipe (spec
// §4.1 start()). On any failure the state rolls back to Idle and every
// subprocess already spawned is torn down.
func (r *Recorder) Start(opts models.RecordingOptions) error {
	r.mu.Lock()
	if r.state.Phase != models.PhaseIdle {
		r.mu.Unlock()
		return coreerr.New(coreerr.Recording, "already recording")
	}
	r.state.Phase = models.PhaseRecording
	r.mu.Unlock()

	if err := r.doStart(opts); err != nil {
		r.mu.Lock()
		r.state = models.SessionState{}
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Recorder) doStart(opts models.RecordingOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return coreerr.New(coreerr.Recording, "width and height must be positive")
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.MicGain <= 0 {
		opts.MicGain = defaultMicGain
	}

	tempDir, err := r.mkdirTemp()
	if err != nil {
		return coreerr.Wrap(coreerr.Io, "create temp session directory", err)
	}

	r.recordingPaused.Store(false)
	r.micMuted.Store(false)
	r.sysAudioMuted.Store(false)
	r.haveSysAudioFirst.Store(false)

	r.opts = opts
	r.tempDir = tempDir

	videoPath := filepath.Join(tempDir, "video.mp4")
	r.pipe = r.newPipe(r.encoderPath, videoPath, opts.Width, opts.Height, opts.FrameRate, opts.HWAccel)
	if err := r.pipe.Start(); err != nil {
		os.RemoveAll(tempDir)
		return coreerr.Wrap(coreerr.Recording, "start video encoder pipe", err)
	}

	r.sysSink, err = audiosink.Create(filepath.Join(tempDir, "system-audio.pcm"))
	if err != nil {
		r.teardown()
		return coreerr.Wrap(coreerr.Io, "create system audio sink", err)
	}

	if opts.IncludeMicrophone {
		r.micSink, err = audiosink.Create(filepath.Join(tempDir, "mic.pcm"))
		if err != nil {
			r.teardown()
			return coreerr.Wrap(coreerr.Io, "create microphone sink", err)
		}
		r.micSrc = r.newMicSource(r.encoderPath, opts)
		if err := r.micSrc.Start(r.onMicBlock); err != nil {
			r.teardown()
			return coreerr.Wrap(coreerr.Recording, "start microphone capture", err)
		}
	}

	r.syncHandle.SetEnabled(opts.IncludeCamera)
	if opts.IncludeCamera {
		r.cameraSrc = r.newCameraSource(r.encoderPath, opts)
		if err := r.cameraSrc.Start(r.syncHandle.PushFrame); err != nil {
			r.teardown()
			return coreerr.Wrap(coreerr.Camera, "start camera capture", err)
		}
	}

	r.screenSrc = r.newScreenSource(r.encoderPath, opts)
	if err := r.screenSrc.Start(r.onScreenFrame, r.onSystemAudio); err != nil {
		r.teardown()
		return coreerr.Wrap(coreerr.Recording, "start screen capture", err)
	}

	r.clock.Start()
	r.elapsed = ticker.Start(time.Second, r.clock.Elapsed, func(d time.Duration) {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingElapsed, ElapsedMs: d.Milliseconds()})
	})

	r.mu.Lock()
	r.state = models.SessionState{
		Phase:             models.PhaseRecording,
		Paused:            false,
		StartedAt:         time.Now(),
		OutputTempPath:    videoPath,
		IncludeMicrophone: opts.IncludeMicrophone,
		IncludeCamera:     opts.IncludeCamera,
	}
	r.mu.Unlock()

	r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingStarted, StartedAtMs: time.Now().UnixMilli()})
	return nil
}

// onScreenFrame is the Screen Capture Source's frame callback (spec §4.3):
// publishes PTS to the sync engine unconditionally, writes to the encoder
// pipe only while not paused.
func (r *Recorder) onScreenFrame(f screen.Frame) {
	r.syncHandle.OnScreenPTS(f.PTSNs)
	if r.recordingPaused.Load() {
		return
	}
	if err := r.pipe.Write(f.Data); err != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingError, Message: err.Error()})
	}
}

// onSystemAudio is the Screen Capture Source's audio callback (spec §4.3):
// zeroes bytes under mute, drops them under pause, records the first-byte
// timestamp for muxer alignment.
func (r *Recorder) onSystemAudio(b screen.AudioBlock) {
	if r.haveSysAudioFirst.CompareAndSwap(false, true) {
		r.sysAudioFirstByteNs.Store(b.PTSNs)
	}
	if r.recordingPaused.Load() {
		return
	}
	r.sysSink.SetMuted(r.sysAudioMuted.Load())
	if err := r.sysSink.Write(b.Data); err != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingError, Message: err.Error()})
	}
}

// onMicBlock is the Microphone Capture Source's reader callback (spec
// §4.4).
func (r *Recorder) onMicBlock(data []byte) {
	if r.recordingPaused.Load() {
		return
	}
	r.micSink.SetMuted(r.micMuted.Load())
	if err := r.micSink.Write(data); err != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingError, Message: err.Error()})
	}
}

// Pause sets the recording_paused flag observed by capture callbacks
// without stopping the underlying OS capture stream (spec §4.1 pause()).
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Phase != models.PhaseRecording {
		return coreerr.New(coreerr.Recording, "not recording")
	}
	if r.state.Paused {
		return coreerr.New(coreerr.Recording, "already paused")
	}
	r.recordingPaused.Store(true)
	r.clock.Pause()
	r.state.Paused = true
	r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingPaused, ElapsedMs: r.clock.Elapsed().Milliseconds()})
	return nil
}

// Resume clears the paused flag and resumes the clock (spec §4.1 resume()).
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Phase != models.PhaseRecording {
		return coreerr.New(coreerr.Recording, "not recording")
	}
	if !r.state.Paused {
		return coreerr.New(coreerr.Recording, "not paused")
	}
	r.recordingPaused.Store(false)
	r.clock.Resume()
	r.state.Paused = false
	r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingResumed, ElapsedMs: r.clock.Elapsed().Milliseconds()})
	return nil
}

// SetMicMuted toggles the microphone mute flag. Permitted in any state; a
// no-op when idle (spec §4.1).
func (r *Recorder) SetMicMuted(muted bool) { r.micMuted.Store(muted) }

// SetSystemAudioMuted toggles the system-audio mute flag.
func (r *Recorder) SetSystemAudioMuted(muted bool) { r.sysAudioMuted.Store(muted) }

// Stop tears down capture, invokes the muxer and the file-save stage, and
// returns to Idle (spec §4.1 stop(), §4.6, §4.7).
func (r *Recorder) Stop(saveLocation *string) (models.RecordingStopResult, error) {
	r.mu.Lock()
	if r.state.Phase != models.PhaseRecording {
		r.mu.Unlock()
		return models.RecordingStopResult{}, coreerr.New(coreerr.Recording, "not recording")
	}
	elapsed := r.clock.Elapsed()
	videoPath := r.state.OutputTempPath
	includeMic := r.state.IncludeMicrophone
	r.mu.Unlock()

	r.teardownCapture()
	r.clock.Stop()

	mergeOpts := muxer.MergeOptions{
		EncoderPath: r.encoderPath,
		VideoFile:   videoPath,
		OutputPath:  videoPath + ".muxed.mp4",
		DurationUs:  elapsed.Microseconds(),
	}

	if r.sysSink != nil && r.sysSink.BytesWritten() > 0 {
		offset := firstByteOffsetSeconds(r.sysAudioFirstByteNs.Load())
		sampleRate := r.screenSrc.AudioLayout().SampleRateHz
		if sampleRate <= 0 {
			sampleRate = 48000
		}
		mergeOpts.SystemAudio = &muxer.AudioTrack{
			Path:       r.sysSink.Path(),
			SampleRate: sampleRate,
			OffsetSec:  offset,
			TempoRatio: 1.0,
		}
	}

	if includeMic && r.micSink != nil && r.micSink.BytesWritten() > 0 {
		firstByteNs, _ := r.micSrc.FirstByteNs()
		offset := firstByteOffsetSeconds(firstByteNs)
		ratio := micTempoRatio(r.micSink.BytesWritten(), elapsed)
		mergeOpts.Mic = &muxer.AudioTrack{
			Path:       r.micSink.Path(),
			SampleRate: 48000,
			OffsetSec:  offset,
			TempoRatio: ratio,
			Gain:       r.opts.MicGain,
		}
	}

	result, mergeErr := r.mergeFunc(mergeOpts)

	r.mu.Lock()
	r.state = models.SessionState{}
	r.mu.Unlock()

	if mergeErr != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingError, Message: mergeErr.Error()})
		return models.RecordingStopResult{}, coreerr.Wrap(coreerr.Recording, "mux recording", mergeErr)
	}

	finalPath, saveErr := filesave.Save(result.OutputPath, saveLocation)
	if saveErr != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingError, Message: saveErr.Error()})
		return models.RecordingStopResult{}, saveErr
	}

	os.RemoveAll(r.tempDir)

	r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingSaved, Path: finalPath})
	r.bus.Publish(eventbus.Event{Kind: eventbus.RecordingStopped})

	return models.RecordingStopResult{
		ElapsedMs:  elapsed.Milliseconds(),
		OutputPath: finalPath,
		VideoOnly:  result.VideoOnly,
	}, nil
}

// teardownCapture stops every running source, the encoder pipe and the
// elapsed ticker, in the order spec §4.1 stop() describes.
func (r *Recorder) teardownCapture() {
	if r.elapsed != nil {
		r.elapsed.Stop()
	}
	if r.screenSrc != nil {
		r.screenSrc.Stop()
	}
	time.Sleep(100 * time.Millisecond) // drain in-flight callbacks, spec §4.1
	if r.cameraSrc != nil {
		r.cameraSrc.Stop()
	}
	r.syncHandle.SetEnabled(false)
	if r.pipe != nil {
		r.pipe.Stop()
	}
	if r.micSrc != nil {
		r.micSrc.Stop()
	}
	if r.sysSink != nil {
		r.sysSink.Close()
	}
	if r.micSink != nil {
		r.micSink.Close()
	}
}

// teardown is the Start-failure rollback path: best-effort cleanup of
// whatever was already spawned, then the temp directory.
func (r *Recorder) teardown() {
	r.teardownCapture()
	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
	}
}

// firstByteOffsetSeconds converts a source's first-arrival timestamp into
// the alignment offset spec §4.6 step 1 calls for. Each capture source
// stamps with its own timebase.Clock, which starts at zero when that source
// is constructed in doStart, so the value is the first arrival measured
// from that source's construction, not from one shared session start.
func firstByteOffsetSeconds(firstByteNs uint64) float64 {
	return float64(firstByteNs) / 1e9
}

// micTempoRatio computes mic_duration / video_duration, returning 1.0 (no
// correction) when the two durations are within 0.1% of each other (spec
// §4.6 step 2).
func micTempoRatio(micBytesWritten uint64, videoDuration time.Duration) float64 {
	const bytesPerSecond = 48000 * 2 * 2 // 48kHz, stereo, s16le
	micDuration := float64(micBytesWritten) / bytesPerSecond
	videoSeconds := videoDuration.Seconds()
	if videoSeconds <= 0 {
		return 1.0
	}
	ratio := micDuration / videoSeconds
	if ratio > 1-micRateTolerance && ratio < 1+micRateTolerance {
		return 1.0
	}
	return ratio
}
