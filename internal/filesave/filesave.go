// Package filesave implements the File Save Stage (spec §4.7): it moves the
// muxer's temporary output into the user's chosen (or default) save
// location under a timestamped name, adapted from the teacher's
// GetDefaultVideosDir/EnsureDirectories pattern in internal/config.
package filesave

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brightloop/screencap/internal/coreerr"
)

// DefaultSubdir is where recordings land when the user has not configured
// a save location, relative to the user's home directory.
const DefaultSubdir = "Downloads"

// homeDirFunc is a test seam, overridable to avoid depending on the real
// home directory in tests.
var homeDirFunc = os.UserHomeDir

// nowFunc is a test seam for the unix-seconds timestamp used in filenames.
var nowFunc = func() int64 { return time.Now().Unix() }

// ResolveDir returns the directory recordings should be saved to: saveLocation
// if non-empty, otherwise ~/Downloads.
func ResolveDir(saveLocation *string) (string, error) {
	if saveLocation != nil && *saveLocation != "" {
		return *saveLocation, nil
	}
	home, err := homeDirFunc()
	if err != nil {
		return "", coreerr.Wrap(coreerr.Io, "resolve home directory", err)
	}
	return filepath.Join(home, DefaultSubdir), nil
}

// Save moves tempPath into the resolved save directory under a name of the
// form recording-<unix-seconds>.mp4, creating the directory if needed, and
// removes tempPath afterward (spec §4.7: "copy to final location...remove
// the temp file").
func Save(tempPath string, saveLocation *string) (string, error) {
	dir, err := ResolveDir(saveLocation)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", coreerr.Wrap(coreerr.Io, "create save directory", err)
	}

	finalPath := filepath.Join(dir, "recording-"+strconv.FormatInt(nowFunc(), 10)+".mp4")

	if err := copyFile(tempPath, finalPath); err != nil {
		return "", coreerr.Wrap(coreerr.Io, "copy recording to save location", err)
	}
	if err := os.Remove(tempPath); err != nil {
		return "", coreerr.Wrap(coreerr.Io, "remove temporary recording file", err)
	}

	return finalPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
