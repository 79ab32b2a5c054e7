package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// statsWriteAttempts bounds the read-modify-write retry loop. Conflicts are
// rare: a user has at most a handful of concurrent sessions.
const statsWriteAttempts = 3

type statsDoc struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	BestScore   int `json:"best_score"`
	TotalScore  int `json:"total_score"`
	TotalMoves  int `json:"total_moves"`
}

func docFromStats(s ports.Stats) statsDoc {
	return statsDoc{
		GamesPlayed: s.GamesPlayed,
		GamesWon:    s.GamesWon,
		BestScore:   s.BestScore,
		TotalScore:  s.TotalScore,
		TotalMoves:  s.TotalMoves,
	}
}

func (d statsDoc) stats() ports.Stats {
	return ports.Stats{
		GamesPlayed: d.GamesPlayed,
		GamesWon:    d.GamesWon,
		BestScore:   d.BestScore,
		TotalScore:  d.TotalScore,
		TotalMoves:  d.TotalMoves,
	}
}

// NakamaStatsAdapter implements ports.StatsPort on Nakama storage. The
// aggregate lives in one object per user; result folding uses conditional
// writes so concurrent sessions cannot lose counts.
type NakamaStatsAdapter struct {
	nk storageAPI
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// EnsureStats writes the zeroed aggregate at most once.
func (a *NakamaStatsAdapter) EnsureStats(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}

	err := a.write(ctx, userID, statsDoc{}, "*")
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create stats: %w", err)
	}
	return true, nil
}

// RecordResult folds one finished game into the user's aggregates.
func (a *NakamaStatsAdapter) RecordResult(ctx context.Context, userID string, res ports.Result) error {
	for attempt := 0; attempt < statsWriteAttempts; attempt++ {
		doc, version, err := a.read(ctx, userID)
		if err != nil {
			return err
		}

		stats := doc.stats()
		stats.Apply(res)

		// A missing aggregate is created under the only-if-absent
		// condition so two first writers cannot both succeed.
		if version == "" {
			version = "*"
		}
		err = a.write(ctx, userID, docFromStats(stats), version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return fmt.Errorf("failed to write stats: %w", err)
		}
	}
	return fmt.Errorf("failed to write stats after %d attempts: %w", statsWriteAttempts, ports.ErrVersionConflict)
}

// Stats returns the user's aggregates, zero-valued for new users.
func (a *NakamaStatsAdapter) Stats(ctx context.Context, userID string) (ports.Stats, error) {
	doc, _, err := a.read(ctx, userID)
	if err != nil {
		return ports.Stats{}, err
	}
	return doc.stats(), nil
}

// read returns the stored aggregate and its version, zero and "" when the
// user has none yet.
func (a *NakamaStatsAdapter) read(ctx context.Context, userID string) (statsDoc, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{
			Collection: statsCollection,
			Key:        statsKey,
			UserID:     userID,
		},
	})
	if err != nil {
		return statsDoc{}, "", fmt.Errorf("failed to read stats: %w", err)
	}
	if len(objects) == 0 {
		return statsDoc{}, "", nil
	}

	var doc statsDoc
	if err := json.Unmarshal([]byte(objects[0].Value), &doc); err != nil {
		return statsDoc{}, "", fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return doc, objects[0].Version, nil
}

func (a *NakamaStatsAdapter) write(ctx context.Context, userID string, doc statsDoc, version string) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	return err
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
