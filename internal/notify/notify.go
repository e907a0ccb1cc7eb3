// Package notify sends macOS desktop notifications via osascript, adapted
// from the teacher's notify-send wrapper (Linux's equivalent of the same
// one-shot "tell the user something happened" call).
package notify

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/brightloop/screencap/internal/eventbus"
)

// Send displays title/body as a macOS notification banner.
func Send(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	return exec.Command("osascript", "-e", script).Run()
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// Subscribe registers a notify.Send-backed subscriber on bus, surfacing
// the save/error events a user needs to see even without a UI attached
// (spec §4.9's event taxonomy; the teacher's RecordingStarted/
// RecordingComplete helpers generalized into bus subscriber form).
func Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(ev eventbus.Event) {
		switch ev.Kind {
		case eventbus.RecordingStarted:
			Send("Screen Recording", "Recording started")
		case eventbus.RecordingSaved:
			Send("Screen Recording Complete", sanitize(ev.Path)+" saved")
		case eventbus.RecordingError:
			Send("Screen Recording Error", sanitize(ev.Message))
		case eventbus.CameraError:
			Send("Camera Error", sanitize(ev.Message))
		}
	})
}
