package ports

import "context"

// Result is one finished or abandoned game.
type Result struct {
	Seed  int64
	Score int
	Moves int
	Won   bool
	// Journal optionally carries the game's forward op record as JSON so it
	// can be verified later. Adapters that only keep aggregates ignore it.
	Journal string
}

// Stats aggregates a user's finished games.
type Stats struct {
	GamesPlayed int
	GamesWon    int
	BestScore   int
	TotalScore  int
	TotalMoves  int
}

// Apply folds one result into the aggregates.
func (s *Stats) Apply(res Result) {
	s.GamesPlayed++
	if res.Won {
		s.GamesWon++
	}
	if res.Score > s.BestScore {
		s.BestScore = res.Score
	}
	s.TotalScore += res.Score
	s.TotalMoves += res.Moves
}

// StatsPort records game results and serves per-user aggregates.
type StatsPort interface {
	// EnsureStats creates the zeroed aggregate row at most once.
	// Returns created=false when the row already existed.
	EnsureStats(ctx context.Context, userID string) (bool, error)

	// RecordResult folds one finished game into the user's aggregates.
	RecordResult(ctx context.Context, userID string, res Result) error

	// Stats returns the user's aggregates, zero-valued for new users.
	Stats(ctx context.Context, userID string) (Stats, error)
}
