package audiosink

import (
	"encoding/binary"
	"math"
)

// FloatToS16 converts a normalized float32 sample in [-1.0, 1.0] to a
// signed-16 sample, clamping values outside that range (spec §8's testable
// property: float_to_s16(f) lies in [-32767, 32767] and round-trips to
// within 1/32767).
func FloatToS16(f float32) int16 {
	if f > 1.0 {
		f = 1.0
	}
	if f < -1.0 {
		f = -1.0
	}
	return int16(math.Round(float64(f) * 32767))
}

// ConvertFloat32LEToS16LE converts a buffer of little-endian interleaved
// float32 PCM samples into little-endian interleaved signed-16 PCM, the
// conversion the system-audio callback performs on every block before it
// reaches the raw audio sink (spec §4.3's "Audio callback(sample)": converts
// Float32 samples to interleaved signed-16 LE). Any trailing bytes that
// don't form a complete float32 sample are dropped.
func ConvertFloat32LEToS16LE(src []byte) []byte {
	n := len(src) / 4
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(src[i*4 : i*4+4])
		f := math.Float32frombits(bits)
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(FloatToS16(f)))
	}
	return out
}
