// Package audiosink implements the Raw Audio Sinks (spec §2 item 8,
// §5 "mute flags...atomic booleans, readable from capture-hot-paths
// without locking"): files receiving interleaved signed-16 PCM, one per
// audio source, gated by mute and pause flags.
package audiosink

import (
	"os"
	"sync/atomic"

	"github.com/brightloop/screencap/internal/coreerr"
)

// Sink writes PCM blocks to a file, zeroing bytes under mute and dropping
// them entirely under pause.
type Sink struct {
	path string
	f    *os.File

	muted         atomic.Bool
	paused        atomic.Bool
	bytesWritten  atomic.Uint64
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Io, "create raw audio sink file", err)
	}
	return &Sink{path: path, f: f}, nil
}

// SetMuted toggles the mute flag; effective immediately on the next Write.
func (s *Sink) SetMuted(muted bool) { s.muted.Store(muted) }

// SetPaused toggles the pause flag; paused writes are dropped, not zeroed.
func (s *Sink) SetPaused(paused bool) { s.paused.Store(paused) }

// Write gates data through the pause/mute flags and appends to the file.
// Dropped writes (paused) return nil with no bytes written, matching
// spec §4.1's "callbacks...drop samples rather than write them".
func (s *Sink) Write(data []byte) error {
	if s.paused.Load() {
		return nil
	}

	out := data
	if s.muted.Load() {
		out = make([]byte, len(data))
	}

	n, err := s.f.Write(out)
	if err != nil {
		return coreerr.Wrap(coreerr.Io, "write raw audio sink", err)
	}
	s.bytesWritten.Add(uint64(n))
	return nil
}

// BytesWritten reports the total bytes appended so far.
func (s *Sink) BytesWritten() uint64 { return s.bytesWritten.Load() }

// Path returns the backing file path.
func (s *Sink) Path() string { return s.path }

// Close closes the backing file.
func (s *Sink) Close() error {
	return s.f.Close()
}
