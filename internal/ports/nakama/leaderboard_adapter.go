package nakama

import (
	"context"
	"fmt"

	"klondike/internal/config"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// leaderboardAPI is the slice of runtime.NakamaModule the leaderboard
// adapter uses.
type leaderboardAPI interface {
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// NakamaLeaderboardAdapter implements ports.LeaderboardPort using Nakama's
// leaderboard API.
type NakamaLeaderboardAdapter struct {
	nk leaderboardAPI
}

// NewNakamaLeaderboardAdapter creates a new leaderboard adapter.
func NewNakamaLeaderboardAdapter(nk runtime.NakamaModule) *NakamaLeaderboardAdapter {
	return &NakamaLeaderboardAdapter{nk: nk}
}

// Submit writes one score record to the configured leaderboard.
func (a *NakamaLeaderboardAdapter) Submit(ctx context.Context, userID, username string, score int64, metadata map[string]interface{}) error {
	_, err := a.nk.LeaderboardRecordWrite(ctx, config.LeaderboardID(), userID, username, score, 0, metadata, nil)
	if err != nil {
		return fmt.Errorf("failed to write leaderboard record: %w", err)
	}
	return nil
}

var _ ports.LeaderboardPort = (*NakamaLeaderboardAdapter)(nil)
