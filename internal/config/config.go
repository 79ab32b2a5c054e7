package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"klondike/internal/domain"
)

type GameConfig struct {
	// HistoryLimit caps how many moves stay undoable per game.
	HistoryLimit  int    `json:"history_limit"`
	LeaderboardID string `json:"leaderboard_id"`
	// ReceiptTTLSeconds configures how long a win receipt stays verifiable.
	ReceiptTTLSeconds int `json:"receipt_ttl_seconds"`
	MaxReplayOps      int `json:"max_replay_ops"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// HistoryLimit returns the undo history cap for new games. A negative
// configured value means unbounded.
func HistoryLimit() int {
	if cfg == nil || cfg.HistoryLimit == 0 {
		return domain.DefaultHistoryLimit // Safe default
	}
	if cfg.HistoryLimit < 0 {
		return 0
	}
	return cfg.HistoryLimit
}

// LeaderboardID returns the leaderboard that verified wins are written to.
func LeaderboardID() string {
	if cfg == nil || cfg.LeaderboardID == "" {
		return "klondike_score"
	}
	return cfg.LeaderboardID
}

// ReceiptTTL returns how long issued win receipts stay valid.
func ReceiptTTL() time.Duration {
	if cfg == nil || cfg.ReceiptTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(cfg.ReceiptTTLSeconds) * time.Second
}

// MaxReplayOps caps how many journal ops a replay submission may carry.
func MaxReplayOps() int {
	if cfg == nil || cfg.MaxReplayOps <= 0 {
		return 10000
	}
	return cfg.MaxReplayOps
}
