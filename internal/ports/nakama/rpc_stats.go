package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

type statsResponse struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	BestScore   int `json:"best_score"`
	TotalScore  int `json:"total_score"`
	TotalMoves  int `json:"total_moves"`
}

func rpcStats(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return statsOp(ctx, newGameDeps(ctx, logger, nk))
}

func statsOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	stats, err := d.stats.Stats(ctx, userID)
	if err != nil {
		d.logger.Error("Stats read failed for user %s: %v", userID, err)
		return "", runtime.NewError("Failed to read stats", 13)
	}

	return marshalPayload(statsResponse{
		GamesPlayed: stats.GamesPlayed,
		GamesWon:    stats.GamesWon,
		BestScore:   stats.BestScore,
		TotalScore:  stats.TotalScore,
		TotalMoves:  stats.TotalMoves,
	})
}
