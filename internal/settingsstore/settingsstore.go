// Package settingsstore loads and saves the JSON settings file at
// <config_dir>/<app>/settings.json (spec §6), adapted from the teacher's
// internal/config.Load/Save shape.
package settingsstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/brightloop/screencap/internal/coreerr"
	"github.com/brightloop/screencap/internal/models"
)

const (
	// ConfigDirName is the directory under the user's home holding settings.json.
	ConfigDirName = ".config/screencap"
	// FileName is the settings file's name.
	FileName = "settings.json"
)

// homeDirFunc is overridden in tests to avoid touching the real home dir.
var homeDirFunc = os.UserHomeDir

// Dir returns the settings directory, falling back to a relative path if
// the home directory can't be resolved.
func Dir() string {
	home, err := homeDirFunc()
	if err != nil {
		return ConfigDirName
	}
	return filepath.Join(home, ConfigDirName)
}

func path() string {
	return filepath.Join(Dir(), FileName)
}

// Load reads settings.json, returning defaults when the file is missing
// and a Settings error when it exists but fails to parse (spec §6/§7).
func Load() (models.AppSettings, error) {
	data, err := os.ReadFile(path())
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultAppSettings(), nil
		}
		return models.AppSettings{}, coreerr.Wrap(coreerr.Io, "read settings file", err)
	}

	var s models.AppSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return models.AppSettings{}, coreerr.Wrap(coreerr.Settings, "parse settings file", err)
	}
	return s, nil
}

// Save writes settings.json, creating the parent directory if needed.
// Failures are returned to the caller (spec §7: "Settings write failures
// are returned to the caller").
func Save(s models.AppSettings) error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return coreerr.Wrap(coreerr.Io, "create settings directory", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return coreerr.Wrap(coreerr.Settings, "marshal settings", err)
	}

	if err := os.WriteFile(path(), data, 0644); err != nil {
		return coreerr.Wrap(coreerr.Io, "write settings file", err)
	}
	return nil
}
