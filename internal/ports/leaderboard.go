package ports

import "context"

// LeaderboardPort submits verified win scores for ranking.
type LeaderboardPort interface {
	// Submit writes one score record for the user. The metadata travels
	// with the record so entries can be traced back to their deal.
	Submit(ctx context.Context, userID, username string, score int64, metadata map[string]interface{}) error
}
