// Package eventbus is the typed emission port for the UI (spec §4.9). The
// core calls into it but never owns transport or blocks on delivery;
// generalized from the teacher's merger.ProgressCallback/PercentCallback
// single-purpose callbacks into a closed event-kind sum.
package eventbus

import (
	"log"
	"sync"

	"github.com/brightloop/screencap/internal/models"
)

// Kind enumerates the event taxonomy from spec §4.9.
type Kind int

const (
	RecordingStarted Kind = iota
	RecordingPaused
	RecordingResumed
	RecordingStopped
	RecordingElapsed
	RecordingSaved
	RecordingError
	CameraFrameEvent
	CameraError
	SettingsUpdated
	ImmersiveModeChanged
)

// Event is the payload delivered to subscribers. Only the fields relevant
// to Kind are populated.
type Event struct {
	Kind          Kind
	StartedAtMs   int64
	ElapsedMs     int64
	Path          string
	Message       string
	Frame         models.CameraFrame
	ImmersiveOn   bool
}

// Subscriber receives events best-effort; it must not block for long, since
// Bus.Publish delivers synchronously per-publisher and a slow subscriber
// delays that publisher's own ordering guarantee (spec §5: "Event-bus
// emissions are ordered per publisher").
type Subscriber func(Event)

// Bus fans a stream of Events out to zero or more subscribers. Delivery is
// best-effort and fire-and-forget: a subscriber panic is recovered and
// logged so the publisher never unwinds across the emission boundary.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber and returns an unsubscribe function.
func (b *Bus) Subscribe(s Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
	idx := len(b.subs) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.subs) {
			b.subs[idx] = nil
		}
	}
}

// Publish delivers ev to every live subscriber. The core must not block on
// this call; callers on a capture hot path should invoke Publish from a
// goroutine if a subscriber is known to be slow.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s == nil {
			continue
		}
		b.deliver(s, ev)
	}
}

func (b *Bus) deliver(s Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("eventbus: subscriber panic recovered: %v", r)
		}
	}()
	s(ev)
}
