package muxer

import "testing"

func TestAlignmentFilter_PositiveOffsetUsesAdelay(t *testing.T) {
	got := AlignmentFilter(0.25)
	want := "adelay=250|250"
	if got != want {
		t.Errorf("AlignmentFilter(0.25) = %q, want %q", got, want)
	}
}

func TestAlignmentFilter_NegativeOffsetUsesTrim(t *testing.T) {
	got := AlignmentFilter(-0.1)
	want := "atrim=start=0.100000,asetpts=PTS-STARTPTS"
	if got != want {
		t.Errorf("AlignmentFilter(-0.1) = %q, want %q", got, want)
	}
}

func TestAlignmentFilter_ZeroOffsetIsNoop(t *testing.T) {
	if got := AlignmentFilter(0); got != "anull" {
		t.Errorf("AlignmentFilter(0) = %q, want anull", got)
	}
}
