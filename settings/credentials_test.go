package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if err := Save(Credentials{AppID: "20240001", AppKey: "sekrit"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	creds, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.AppID != "20240001" || creds.AppKey != "sekrit" {
		t.Fatalf("Load = %+v", creds)
	}
}

func TestLoadMissingStore(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	creds, err := Load()
	if err != nil {
		t.Fatalf("missing store must not error: %v", err)
	}
	if creds.AppID != "" || creds.AppKey != "" {
		t.Fatalf("missing store should yield empty credentials, got %+v", creds)
	}
}

func TestFilePermissions(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if err := Save(Credentials{AppID: "id", AppKey: "key"}); err != nil {
		t.Fatal(err)
	}
	path, err := FilePath()
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("auth.json permissions = %o, want 600", perm)
	}
	if filepath.Base(path) != "auth.json" {
		t.Fatalf("unexpected store file name: %s", path)
	}
}
