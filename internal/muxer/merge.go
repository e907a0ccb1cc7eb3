// Package muxer implements the Offline Muxer (spec §4.6): it combines the
// video-only file produced by the encoder pipe with zero, one, or two raw
// PCM audio tracks (microphone, system audio) into a single MP4, applying
// per-source alignment, tempo correction, mixing, resampling and peak
// limiting. On failure it degrades to a video-only copy rather than losing
// the recording entirely (spec §7 "mux failures degrade to video-only").
package muxer

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/brightloop/screencap/internal/coreerr"
)

// ProgressFunc is invoked with a 0-100 completion percentage while the final
// ffmpeg mux runs, mirroring the teacher's PercentCallback shape.
type ProgressFunc func(percent float64)

// AudioTrack describes one raw PCM audio source to be folded into the mux.
type AudioTrack struct {
	Path       string  // raw s16le PCM file
	SampleRate int     // input sample rate, Hz
	OffsetSec  float64 // positive: delay this track; negative: trim its head
	TempoRatio float64 // 1.0 for no correction; see BuildAtempoChain
	Gain       float64 // volume multiplier; 0 or 1.0 means unity gain
}

// MergeOptions configures one offline mux (spec §4.6).
type MergeOptions struct {
	EncoderPath string
	VideoFile   string // video-only MP4 from the Video Encoder Pipe
	Mic         *AudioTrack
	SystemAudio *AudioTrack
	OutputPath  string
	DurationUs  int64 // expected output duration, for progress percentage
	OnProgress  ProgressFunc
}

// MergeResult reports what the mux actually produced.
type MergeResult struct {
	OutputPath string
	VideoOnly  bool // true if audio muxing failed and degraded to video-only
}

// Merge runs the offline mux described by opts. On any audio-path ffmpeg
// failure it falls back to copying the video-only stream to OutputPath
// rather than returning an error, so a recording session never loses its
// video over an audio problem.
func Merge(opts MergeOptions) (*MergeResult, error) {
	if opts.Mic == nil && opts.SystemAudio == nil {
		if err := remux(opts.EncoderPath, opts.VideoFile, opts.OutputPath); err != nil {
			return nil, coreerr.Wrap(coreerr.Recording, "remux video-only", err)
		}
		return &MergeResult{OutputPath: opts.OutputPath, VideoOnly: true}, nil
	}

	if err := mixAndMux(opts); err != nil {
		if fallbackErr := remux(opts.EncoderPath, opts.VideoFile, opts.OutputPath); fallbackErr != nil {
			return nil, coreerr.Wrap(coreerr.Recording, "mux failed and video-only fallback failed", fallbackErr)
		}
		return &MergeResult{OutputPath: opts.OutputPath, VideoOnly: true}, nil
	}

	return &MergeResult{OutputPath: opts.OutputPath}, nil
}

// remux copies the video stream unchanged into outputPath, used both for the
// no-audio case and as the degrade-on-failure path.
func remux(encoderPath, videoFile, outputPath string) error {
	cmd := exec.Command(encoderPath, "-y", "-i", videoFile, "-c", "copy", "-an", "-movflags", "+faststart", outputPath)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg remux: %w: %s", err, stderr.String())
	}
	return nil
}

// mixAndMux builds the filter graph for the present audio tracks, mixes them
// against the video, and writes OutputPath.
func mixAndMux(opts MergeOptions) error {
	args := []string{"-y", "-i", opts.VideoFile}

	var tracks []*AudioTrack
	if opts.Mic != nil {
		tracks = append(tracks, opts.Mic)
	}
	if opts.SystemAudio != nil {
		tracks = append(tracks, opts.SystemAudio)
	}

	for _, t := range tracks {
		rate := t.SampleRate
		if rate == 0 {
			rate = 48000
		}
		args = append(args, "-f", "s16le", "-ar", strconv.Itoa(rate), "-ac", "2", "-i", t.Path)
	}

	filterComplex, audioLabel := buildFilterComplex(tracks)

	args = append(args,
		"-filter_complex", filterComplex,
		"-map", "0:v",
		"-map", audioLabel,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-shortest",
		opts.OutputPath,
	)

	return runFFmpegWithProgress(opts.EncoderPath, opts.DurationUs, opts.OnProgress, args...)
}

// buildFilterComplex constructs the per-track tempo/alignment chain plus the
// mix-down, resample and limiter stages (spec §4.6 steps 1-4), returning the
// filter_complex string and the label of its final audio output.
func buildFilterComplex(tracks []*AudioTrack) (string, string) {
	var chains []string
	var labels []string

	for i, t := range tracks {
		in := fmt.Sprintf("[%d:a]", i+1)
		out := fmt.Sprintf("[a%d]", i)

		var stages []string
		ratio := t.TempoRatio
		if ratio == 0 {
			ratio = 1.0
		}
		if !withinTolerance(ratio, 1.0) {
			for _, f := range BuildAtempoChain(ratio) {
				stages = append(stages, fmt.Sprintf("atempo=%.6f", f))
			}
		}
		stages = append(stages, AlignmentFilter(t.OffsetSec))
		if t.Gain > 0 && !withinTolerance(t.Gain, 1.0) {
			stages = append(stages, fmt.Sprintf("volume=%.3f", t.Gain))
		}

		chains = append(chains, in+strings.Join(stages, ",")+out)
		labels = append(labels, out)
	}

	var mixed string
	if len(labels) == 1 {
		mixed = labels[0]
	} else {
		mixIn := strings.Join(labels, "")
		chains = append(chains, fmt.Sprintf("%samix=inputs=%d:duration=longest[amixed]", mixIn, len(labels)))
		mixed = "[amixed]"
	}

	finalLabel := "[aout]"
	chains = append(chains, fmt.Sprintf("%saresample=async=1000:first_pts=0,alimiter=limit=0.97%s", mixed, finalLabel))

	return strings.Join(chains, ";"), finalLabel
}

// runFFmpegWithProgress runs ffmpeg with progress reporting, adapted from
// the teacher's merger.runFFmpegWithProgress.
func runFFmpegWithProgress(encoderPath string, durationUs int64, onProgress ProgressFunc, args ...string) error {
	progressArgs := append([]string{"-progress", "pipe:1", "-stats_period", "0.5", "-nostats"}, args...)

	cmd := exec.Command(encoderPath, progressArgs...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	if onProgress != nil {
		onProgress(0)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "out_time_us=") {
			continue
		}
		timeStr := strings.TrimPrefix(line, "out_time_us=")
		if timeStr == "N/A" {
			continue
		}
		timeUs, err := strconv.ParseInt(timeStr, 10, 64)
		if err != nil || durationUs <= 0 || timeUs < 0 {
			continue
		}
		percent := float64(timeUs) / float64(durationUs) * 100
		if percent > 100 {
			percent = 100
		}
		if onProgress != nil {
			onProgress(percent)
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}

	return nil
}
