package main

import (
	"log"
	"os"
	"path/filepath"

	"klondike/internal/app"
	"klondike/internal/ports/sqlite"
	"klondike/internal/settings"
	"klondike/internal/tui"
)

func main() {
	path := settingsPath()

	cfg, err := settings.Load(path)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Write the defaults so the player has a file to edit.
		if err := settings.Save(path, cfg); err != nil {
			log.Printf("warning: write settings: %v", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	store, err := sqlite.New(filepath.Join(cfg.DataDir, "klondike.db"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	err = tui.Run(tui.Options{
		Service:  app.NewService(nil),
		Saves:    store,
		Stats:    store,
		Profile:  cfg.Profile,
		Autosave: cfg.Autosave,
		RedSuits: cfg.RedSuits,
	})
	if err != nil {
		log.Fatalf("run client: %v", err)
	}
}

func settingsPath() string {
	if p := os.Getenv("KLONDIKE_SETTINGS"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".klondike", "settings.yaml")
}
