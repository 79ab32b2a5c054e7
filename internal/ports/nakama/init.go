package nakama

import (
	"context"
	"database/sql"

	"klondike/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the score leaderboard for the Nakama
// runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/klondike_config.json"); err != nil {
		logger.Warn("Game config not loaded, using defaults: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	// Authoritative: only the server writes verified scores.
	if err := nk.LeaderboardCreate(ctx, config.LeaderboardID(), true, "desc", "best", "", nil, false); err != nil {
		logger.Warn("Leaderboard create failed: %v", err)
	}

	logger.Info("Klondike Go module loaded.")
	return nil
}
