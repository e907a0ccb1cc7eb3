package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brightloop/screencap/internal/eventbus"
	"github.com/brightloop/screencap/internal/locator"
	"github.com/brightloop/screencap/internal/models"
	"github.com/brightloop/screencap/internal/notify"
	"github.com/brightloop/screencap/internal/session"
	"github.com/brightloop/screencap/internal/settingsstore"
	"github.com/spf13/cobra"
)

var (
	recordWidth              int
	recordHeight             int
	recordFPS                int
	recordHWAccel            bool
	recordNoMic              bool
	recordNoCamera           bool
	recordOutputDir          string
	recordCameraPreviewWidth int
)

// recordCmd runs a single recording session synchronously in the
// foreground, controlled by stdin commands, mirroring the teacher's
// start/stop/pause/resume command split (internal/recorder) collapsed into
// one long-running process since the session's state lives in memory
// rather than in PID files.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start a recording session and control it from the terminal",
	Long: `Starts screen, optional camera and optional microphone capture.

While recording, type a command and press Enter:
  p    pause
  r    resume
  q    stop, mux and save

Ctrl-C also stops and saves the recording.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVar(&recordWidth, "width", 1920, "screen capture width in pixels")
	recordCmd.Flags().IntVar(&recordHeight, "height", 1080, "screen capture height in pixels")
	recordCmd.Flags().IntVar(&recordFPS, "fps", 30, "capture frame rate")
	recordCmd.Flags().BoolVar(&recordHWAccel, "hw-accel", false, "pass -allow_sw 1 to the encoder (the codec stays libx264)")
	recordCmd.Flags().BoolVar(&recordNoMic, "no-mic", false, "disable the microphone track regardless of settings")
	recordCmd.Flags().BoolVar(&recordNoCamera, "no-camera", false, "disable the camera overlay regardless of settings")
	recordCmd.Flags().StringVar(&recordOutputDir, "output", "", "override the configured save location for this recording")
	recordCmd.Flags().IntVar(&recordCameraPreviewWidth, "camera-preview-width", 320, "camera overlay downscale width in pixels")
}

func runRecord(cmd *cobra.Command, args []string) error {
	encoderPath, err := locator.FindEncoder()
	if err != nil {
		return err
	}

	devices, err := locator.NewCache(locator.ResolveDevices).Get()
	if err != nil {
		return err
	}

	settings, err := settingsstore.Load()
	if err != nil {
		return err
	}

	bus := eventbus.New()
	bus.Subscribe(logEvent)
	notify.Subscribe(bus)

	rec := session.New(encoderPath, bus)

	opts := models.RecordingOptions{
		IncludeMicrophone: settings.MicEnabled && !recordNoMic,
		IncludeCamera:     settings.CameraEnabled && !recordNoCamera,
		ScreenTarget:      devices.MainDisplay,
		SystemAudioTarget: devices.SystemAudio,
		CameraTarget:      devices.BuiltInCamera,
		MicTarget:         devices.BuiltInMicrophone,
		Width:              recordWidth,
		Height:             recordHeight,
		FrameRate:          recordFPS,
		HWAccel:            recordHWAccel,
		CameraPreviewWidth: recordCameraPreviewWidth,
	}

	if err := rec.Start(opts); err != nil {
		return err
	}
	fmt.Println("recording started (p=pause, r=resume, q=stop)")

	saveLocation := settings.SaveLocation
	if recordOutputDir != "" {
		saveLocation = &recordOutputDir
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	lineCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lineCh <- strings.TrimSpace(scanner.Text())
		}
		close(lineCh)
	}()

	for {
		select {
		case <-sigCh:
			return stopAndReport(rec, saveLocation)
		case line, ok := <-lineCh:
			if !ok {
				return stopAndReport(rec, saveLocation)
			}
			switch line {
			case "p":
				if err := rec.Pause(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			case "r":
				if err := rec.Resume(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			case "q":
				return stopAndReport(rec, saveLocation)
			}
		}
	}
}

func stopAndReport(rec *session.Recorder, saveLocation *string) error {
	result, err := rec.Stop(saveLocation)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (%.1fs, video-only=%v)\n", result.OutputPath, float64(result.ElapsedMs)/1000, result.VideoOnly)
	return nil
}

func logEvent(ev eventbus.Event) {
	switch ev.Kind {
	case eventbus.RecordingStarted:
		fmt.Println("event: recording started")
	case eventbus.RecordingPaused:
		fmt.Printf("event: paused at %dms\n", ev.ElapsedMs)
	case eventbus.RecordingResumed:
		fmt.Printf("event: resumed at %dms\n", ev.ElapsedMs)
	case eventbus.RecordingStopped:
		fmt.Println("event: stopped")
	case eventbus.RecordingSaved:
		fmt.Printf("event: saved %s\n", ev.Path)
	case eventbus.RecordingError:
		fmt.Fprintf(os.Stderr, "event: error: %s\n", ev.Message)
	case eventbus.CameraError:
		fmt.Fprintf(os.Stderr, "event: camera error: %s\n", ev.Message)
	}
}
