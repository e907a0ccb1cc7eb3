package settingsstore

import (
	"os"
	"testing"

	"github.com/brightloop/screencap/internal/coreerr"
	"github.com/brightloop/screencap/internal/models"
)

func withTempHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old := homeDirFunc
	homeDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { homeDirFunc = old })
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	withTempHome(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != models.DefaultAppSettings() {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	withTempHome(t)

	loc := "/tmp/recordings"
	want := models.AppSettings{
		MicEnabled:        false,
		CameraEnabled:     true,
		ImmersiveShortcut: "Cmd+Shift+I",
		SaveLocation:      &loc,
	}

	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.MicEnabled != want.MicEnabled || got.CameraEnabled != want.CameraEnabled ||
		got.ImmersiveShortcut != want.ImmersiveShortcut || *got.SaveLocation != *want.SaveLocation {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLoad_UnparseableFileReturnsSettingsError(t *testing.T) {
	withTempHome(t)

	if err := os.MkdirAll(Dir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path(), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for unparseable settings file")
	}
	if coreerr.KindOf(err) != coreerr.Settings {
		t.Errorf("expected Settings error kind, got %v", coreerr.KindOf(err))
	}
}
