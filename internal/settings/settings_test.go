package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load should tolerate a missing file, got %v", err)
	}
	if s.Profile != "player" {
		t.Errorf("Default profile should be player, got %q", s.Profile)
	}
	if s.DataDir != filepath.Dir(path) {
		t.Errorf("Default data dir should be %q, got %q", filepath.Dir(path), s.DataDir)
	}
	if !s.Autosave {
		t.Error("Autosave should default to on")
	}
	if s.RedSuits == "" {
		t.Error("Red suit color should have a default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	want := Settings{
		Profile:  "ace",
		DataDir:  "/tmp/klondike-data",
		Autosave: false,
		RedSuits: "124",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Round trip changed settings: got %+v, want %+v", got, want)
	}
}

func TestLoadFillsBlankFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	// A file that only sets the profile should inherit every other default.
	if err := os.WriteFile(path, []byte("profile: nightowl\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Profile != "nightowl" {
		t.Errorf("Profile should come from the file, got %q", s.Profile)
	}
	if s.DataDir != filepath.Dir(path) {
		t.Errorf("Blank data dir should fall back to the settings dir, got %q", s.DataDir)
	}
	if s.RedSuits != "9" {
		t.Errorf("Blank red suit color should fall back to the default, got %q", s.RedSuits)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	if err := os.WriteFile(path, []byte("profile: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should report malformed YAML")
	}
}
