// Package locator resolves the external encoder binary and the semantic
// device indices the capture sources need, per spec §6. Grounded on
// internal/deps.Check's exec.LookPath probing and internal/monitor's
// semantic-to-platform resolution shape, adapted to the macOS-only,
// single-binary scope this spec describes.
package locator

import (
	"encoding/json"
	"os"
	"os/exec"

	"github.com/brightloop/screencap/internal/coreerr"
)

// wellKnownPaths are checked, in order, after the ENCODER_PATH env var and
// before a bare PATH lookup (spec §6).
var wellKnownPaths = []string{
	"/opt/homebrew/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/usr/bin/ffmpeg",
}

// FindEncoder resolves the external encoder binary: ENCODER_PATH env var,
// then well-known install paths, then PATH. The first candidate that
// passes a version probe wins.
func FindEncoder() (string, error) {
	var candidates []string
	if p := os.Getenv("ENCODER_PATH"); p != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, wellKnownPaths...)
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		candidates = append(candidates, p)
	}

	for _, c := range candidates {
		if probeVersion(c) {
			return c, nil
		}
	}

	return "", coreerr.New(coreerr.Recording, "no working encoder binary found (checked ENCODER_PATH, well-known paths, and PATH)")
}

func probeVersion(path string) bool {
	if path == "" {
		return false
	}
	return exec.Command(path, "-version").Run() == nil
}

// Devices maps the semantic device names spec §6 names to platform
// indices, as returned by the device-resolver helper subprocess.
type Devices struct {
	BuiltInMicrophone string `json:"builtInMicrophone"`
	BuiltInCamera     string `json:"builtInCamera"`
	MainDisplay       string `json:"mainDisplay"`
	SystemAudio       string `json:"systemAudio"`
}

// ResolveDevicesFunc abstracts the device-resolver helper invocation so
// tests can substitute a fake without shelling out.
type ResolveDevicesFunc func() (Devices, error)

// ResolveDevices invokes the "device-resolver" helper binary (resolved via
// PATH) once per session and parses its JSON stdout into Devices.
func ResolveDevices() (Devices, error) {
	path, err := exec.LookPath("device-resolver")
	if err != nil {
		return Devices{}, coreerr.Wrap(coreerr.Recording, "device-resolver helper not found on PATH", err)
	}

	out, err := exec.Command(path).Output()
	if err != nil {
		return Devices{}, coreerr.Wrap(coreerr.Recording, "device-resolver helper failed", err)
	}

	var d Devices
	if err := json.Unmarshal(out, &d); err != nil {
		return Devices{}, coreerr.Wrap(coreerr.Encoding, "parse device-resolver output", err)
	}
	return d, nil
}

// Cache resolves devices once and reuses the result for the session
// lifetime (spec §9 "device resolution caching").
type Cache struct {
	resolve ResolveDevicesFunc
	cached  *Devices
}

// NewCache returns a Cache backed by resolve (pass ResolveDevices in
// production, a fake in tests).
func NewCache(resolve ResolveDevicesFunc) *Cache {
	return &Cache{resolve: resolve}
}

// Get returns the cached Devices, resolving on first call.
func (c *Cache) Get() (Devices, error) {
	if c.cached != nil {
		return *c.cached, nil
	}
	d, err := c.resolve()
	if err != nil {
		return Devices{}, err
	}
	c.cached = &d
	return d, nil
}

// Invalidate clears the cache so the next Get re-resolves.
func (c *Cache) Invalidate() {
	c.cached = nil
}
