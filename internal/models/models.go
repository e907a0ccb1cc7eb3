// Package models holds the domain types shared across the recording core:
// session options and state, the camera frame wire shape, and audio layout
// discovery results.
package models

import "time"

// RecordingOptions configures a session. Immutable once Start succeeds.
type RecordingOptions struct {
	IncludeMicrophone  bool    `json:"include_microphone"`
	IncludeCamera      bool    `json:"include_camera"`
	ScreenTarget       string  `json:"screen_target,omitempty"`
	SystemAudioTarget  string  `json:"system_audio_target,omitempty"`
	CameraTarget       string  `json:"camera_target,omitempty"`
	MicTarget          string  `json:"mic_target,omitempty"`
	Width              int     `json:"width,omitempty"`
	Height             int     `json:"height,omitempty"`
	FrameRate          int     `json:"frame_rate,omitempty"`
	HWAccel            bool    `json:"hw_accel,omitempty"`
	MicGain            float64 `json:"mic_gain,omitempty"`
	CameraPreviewWidth int     `json:"camera_preview_width,omitempty"` // downscale target for the camera overlay, not the screen recording width
}

// Phase is the tagged-variant discriminant for SessionState.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
)

func (p Phase) String() string {
	if p == PhaseRecording {
		return "recording"
	}
	return "idle"
}

// SessionState is the process-wide recording state. Exactly one exists.
type SessionState struct {
	Phase             Phase
	Paused            bool
	StartedAt         time.Time
	AccumulatedElapsed time.Duration
	OutputTempPath    string
	IncludeMicrophone bool
	IncludeCamera     bool
}

// CameraFrame is an immutable, strictly-ordered unit of camera preview data.
type CameraFrame struct {
	ID      uint64 `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"`
	Payload []byte `json:"payload"` // base64 over the wire via json.Marshal
	PTSNs   uint64 `json:"pts_ns"`
}

// Interleaving describes how multi-channel PCM samples are laid out.
type Interleaving int

const (
	Interleaved Interleaving = iota
	Planar
)

// AudioLayout is discovered from the first system-audio block of a session
// and cached for its duration (internal/capture/screen.FFmpegSource.
// AudioLayout). Planar never occurs here: the avfoundation audio leg is
// always requested as raw interleaved float32, so there is no planar
// buffer set to detect and interleave.
type AudioLayout struct {
	SampleRateHz int
	Channels     int
	Layout       Interleaving
}

// RecordingStopResult is returned to the caller of Stop.
type RecordingStopResult struct {
	ElapsedMs  int64
	OutputPath string
	VideoOnly  bool
}

// AppSettings is the JSON DTO exchanged with the UI boundary (camelCase,
// spec.md §6/§9 — never pass a dynamically typed map across this boundary).
type AppSettings struct {
	MicEnabled        bool    `json:"micEnabled"`
	CameraEnabled     bool    `json:"cameraEnabled"`
	ImmersiveShortcut string  `json:"immersiveShortcut"`
	SaveLocation      *string `json:"saveLocation"`
}

// DefaultAppSettings mirrors the settings.json defaults named in spec.md §6.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		MicEnabled:        true,
		CameraEnabled:     true,
		ImmersiveShortcut: "Option+I",
		SaveLocation:      nil,
	}
}
