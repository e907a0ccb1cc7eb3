package filesave

import (
	"os"
	"path/filepath"
	"testing"
)

func withFakes(t *testing.T, home string, unixSeconds int64) {
	t.Helper()
	origHome, origNow := homeDirFunc, nowFunc
	homeDirFunc = func() (string, error) { return home, nil }
	nowFunc = func() int64 { return unixSeconds }
	t.Cleanup(func() {
		homeDirFunc = origHome
		nowFunc = origNow
	})
}

func TestResolveDir_DefaultsToDownloads(t *testing.T) {
	withFakes(t, "/home/alice", 0)

	dir, err := ResolveDir(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/home/alice", "Downloads")
	if dir != want {
		t.Errorf("ResolveDir(nil) = %q, want %q", dir, want)
	}
}

func TestResolveDir_UsesExplicitSaveLocation(t *testing.T) {
	withFakes(t, "/home/alice", 0)

	custom := "/mnt/recordings"
	dir, err := ResolveDir(&custom)
	if err != nil {
		t.Fatal(err)
	}
	if dir != custom {
		t.Errorf("ResolveDir(&custom) = %q, want %q", dir, custom)
	}
}

func TestSave_CopiesAndRemovesTempFileUnderTimestampedName(t *testing.T) {
	home := t.TempDir()
	withFakes(t, home, 1700000000)

	tmp := filepath.Join(t.TempDir(), "mux-output.mp4")
	if err := os.WriteFile(tmp, []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	finalPath, err := Save(tmp, nil)
	if err != nil {
		t.Fatal(err)
	}

	wantPath := filepath.Join(home, "Downloads", "recording-1700000000.mp4")
	if finalPath != wantPath {
		t.Errorf("Save() path = %q, want %q", finalPath, wantPath)
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "video bytes" {
		t.Errorf("saved file contents = %q, want %q", data, "video bytes")
	}

	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be removed, stat err = %v", err)
	}
}
