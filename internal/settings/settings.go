// Package settings loads and saves the offline client's preferences.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds everything the terminal client remembers between runs.
type Settings struct {
	Profile  string `yaml:"profile"`
	DataDir  string `yaml:"data_dir"`
	Autosave bool   `yaml:"autosave"`
	RedSuits string `yaml:"red_suits"` // terminal color for hearts and diamonds
}

// Default returns the settings used when no file exists yet. The data
// directory defaults to the directory holding the settings file itself.
func Default(path string) Settings {
	return Settings{
		Profile:  "player",
		DataDir:  filepath.Dir(path),
		Autosave: true,
		RedSuits: "9",
	}
}

// Load reads settings from path. A missing file is not an error; the
// defaults are returned so a first run works without any setup.
func Load(path string) (Settings, error) {
	s := Default(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}

	// Fields left blank in the file fall back to their defaults.
	def := Default(path)
	if s.Profile == "" {
		s.Profile = def.Profile
	}
	if s.DataDir == "" {
		s.DataDir = def.DataDir
	}
	if s.RedSuits == "" {
		s.RedSuits = def.RedSuits
	}
	return s, nil
}

// Save writes settings to path, creating the parent directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
