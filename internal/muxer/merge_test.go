package muxer

import (
	"strings"
	"testing"
)

func TestBuildFilterComplex_SingleTrackNoMix(t *testing.T) {
	tracks := []*AudioTrack{{Path: "mic.pcm", SampleRate: 48000, OffsetSec: 0.03, TempoRatio: 1.0}}

	filter, label := buildFilterComplex(tracks)

	if label != "[aout]" {
		t.Errorf("label = %q, want [aout]", label)
	}
	if filter == "" {
		t.Fatal("expected non-empty filter_complex")
	}
}

func TestBuildFilterComplex_TwoTracksMixed(t *testing.T) {
	tracks := []*AudioTrack{
		{Path: "mic.pcm", SampleRate: 48000, OffsetSec: 0.03, TempoRatio: 1.0},
		{Path: "sys.pcm", SampleRate: 48000, OffsetSec: -0.01, TempoRatio: 1.0},
	}

	filter, label := buildFilterComplex(tracks)

	if label != "[aout]" {
		t.Errorf("label = %q, want [aout]", label)
	}
	if !strings.Contains(filter, "amix=inputs=2") {
		t.Errorf("expected amix stage in filter_complex, got %q", filter)
	}
	if !strings.Contains(filter, "alimiter=limit=0.97") {
		t.Errorf("expected alimiter stage in filter_complex, got %q", filter)
	}
}

func TestBuildFilterComplex_GainAppliedWhenNotUnity(t *testing.T) {
	tracks := []*AudioTrack{{Path: "mic.pcm", SampleRate: 48000, TempoRatio: 1.0, Gain: 1.8}}

	filter, _ := buildFilterComplex(tracks)

	if !strings.Contains(filter, "volume=1.800") {
		t.Errorf("expected volume stage for non-unity gain, got %q", filter)
	}
}

func TestBuildFilterComplex_TempoCorrectionAppliedWhenRatioNotOne(t *testing.T) {
	tracks := []*AudioTrack{{Path: "mic.pcm", SampleRate: 48000, TempoRatio: 1.01}}

	filter, _ := buildFilterComplex(tracks)

	if !strings.Contains(filter, "atempo=") {
		t.Errorf("expected atempo stage for non-identity tempo ratio, got %q", filter)
	}
}

