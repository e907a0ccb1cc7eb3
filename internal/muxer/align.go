package muxer

import "fmt"

// AdelayFilter returns the ffmpeg adelay filter expression inserting
// offsetSec of silence ahead of a stereo stream (spec §4.6 step 1:
// "insert silence of that duration at the front").
func AdelayFilter(offsetSec float64) string {
	ms := int64(offsetSec*1000 + 0.5) // round to nearest ms
	return fmt.Sprintf("adelay=%d|%d", ms, ms)
}

// TrimFilter returns the ffmpeg atrim+asetpts expression trimming
// offsetSec off the head of a stream (spec §4.6 step 1: negative offset
// case).
func TrimFilter(offsetSec float64) string {
	return fmt.Sprintf("atrim=start=%.6f,asetpts=PTS-STARTPTS", offsetSec)
}

// AlignmentFilter picks adelay or atrim depending on the sign of offsetSec,
// matching spec §4.6's per-source alignment rule. A zero offset produces
// no-op filter "anull".
func AlignmentFilter(offsetSec float64) string {
	switch {
	case offsetSec > 0:
		return AdelayFilter(offsetSec)
	case offsetSec < 0:
		return TrimFilter(-offsetSec)
	default:
		return "anull"
	}
}
