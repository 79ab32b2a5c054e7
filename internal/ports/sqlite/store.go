// Package sqlite persists saves and stats for the offline client. One
// database file per machine; profiles share it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"klondike/internal/ports"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. It implements both ports.SavePort and
// ports.StatsPort, keyed by profile name instead of a server user id.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS saves (
			profile    TEXT PRIMARY KEY,
			blob       BLOB NOT NULL,
			version    INTEGER NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS stats (
			profile      TEXT PRIMARY KEY,
			games_played INTEGER NOT NULL DEFAULT 0,
			games_won    INTEGER NOT NULL DEFAULT 0,
			best_score   INTEGER NOT NULL DEFAULT 0,
			total_score  INTEGER NOT NULL DEFAULT 0,
			total_moves  INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS results (
			id        TEXT PRIMARY KEY,
			profile   TEXT NOT NULL,
			seed      INTEGER NOT NULL,
			score     INTEGER NOT NULL,
			moves     INTEGER NOT NULL,
			won       INTEGER NOT NULL,
			journal   TEXT NOT NULL DEFAULT '',
			played_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// Load returns the profile's current save, or ports.ErrNoSave.
func (s *Store) Load(ctx context.Context, profile string) (ports.SavedGame, error) {
	row := s.db.QueryRowContext(ctx, "SELECT blob, version FROM saves WHERE profile = ?", profile)
	var blob []byte
	var version int64
	if err := row.Scan(&blob, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.SavedGame{}, ports.ErrNoSave
		}
		return ports.SavedGame{}, fmt.Errorf("load save: %w", err)
	}
	return ports.SavedGame{Blob: blob, Version: strconv.FormatInt(version, 10)}, nil
}

// Save stores the blob under the caller's version condition. Versions are
// stringified integers counting writes to the slot.
func (s *Store) Save(ctx context.Context, profile string, blob []byte, version string) (string, error) {
	switch version {
	case ports.VersionAny:
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO saves (profile, blob, version, updated_at)
			VALUES (?, ?, 1, CURRENT_TIMESTAMP)
			ON CONFLICT(profile) DO UPDATE SET blob = excluded.blob, version = saves.version + 1, updated_at = excluded.updated_at
		`, profile, blob)
		if err != nil {
			return "", fmt.Errorf("save game: %w", err)
		}
		return s.currentVersion(ctx, profile)

	case ports.VersionCreate:
		res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO saves (profile, blob, version) VALUES (?, ?, 1)", profile, blob)
		if err != nil {
			return "", fmt.Errorf("create save: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("create save: %w", err)
		}
		if n == 0 {
			return "", ports.ErrVersionConflict
		}
		return "1", nil

	default:
		current, err := strconv.ParseInt(version, 10, 64)
		if err != nil {
			// A version this store never issued cannot match.
			return "", ports.ErrVersionConflict
		}
		res, err := s.db.ExecContext(ctx, `
			UPDATE saves SET blob = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE profile = ? AND version = ?
		`, blob, profile, current)
		if err != nil {
			return "", fmt.Errorf("save game: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("save game: %w", err)
		}
		if n == 0 {
			return "", ports.ErrVersionConflict
		}
		return strconv.FormatInt(current+1, 10), nil
	}
}

func (s *Store) currentVersion(ctx context.Context, profile string) (string, error) {
	var version int64
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM saves WHERE profile = ?", profile).Scan(&version); err != nil {
		return "", fmt.Errorf("read save version: %w", err)
	}
	return strconv.FormatInt(version, 10), nil
}

// Delete removes the profile's save. Deleting a missing save is not an error.
func (s *Store) Delete(ctx context.Context, profile string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE profile = ?", profile); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

// EnsureStats creates the zeroed aggregate row at most once.
func (s *Store) EnsureStats(ctx context.Context, profile string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO stats (profile) VALUES (?)", profile)
	if err != nil {
		return false, fmt.Errorf("ensure stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure stats: %w", err)
	}
	return n > 0, nil
}

// RecordResult folds a result into the aggregates and appends it to the
// results log in one transaction.
func (s *Store) RecordResult(ctx context.Context, profile string, res ports.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	defer tx.Rollback()

	won := 0
	if res.Won {
		won = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stats (profile, games_played, games_won, best_score, total_score, total_moves)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			games_played = stats.games_played + 1,
			games_won    = stats.games_won + excluded.games_won,
			best_score   = MAX(stats.best_score, excluded.best_score),
			total_score  = stats.total_score + excluded.total_score,
			total_moves  = stats.total_moves + excluded.total_moves
	`, profile, won, res.Score, res.Score, res.Moves); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO results (id, profile, seed, score, moves, won, journal)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), profile, res.Seed, res.Score, res.Moves, won, res.Journal); err != nil {
		return fmt.Errorf("append result: %w", err)
	}

	return tx.Commit()
}

// Stats returns the profile's aggregates, zero-valued when absent.
func (s *Store) Stats(ctx context.Context, profile string) (ports.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT games_played, games_won, best_score, total_score, total_moves
		FROM stats WHERE profile = ?
	`, profile)

	var stats ports.Stats
	err := row.Scan(&stats.GamesPlayed, &stats.GamesWon, &stats.BestScore, &stats.TotalScore, &stats.TotalMoves)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Stats{}, nil
	}
	if err != nil {
		return ports.Stats{}, fmt.Errorf("read stats: %w", err)
	}
	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var (
	_ ports.SavePort  = (*Store)(nil)
	_ ports.StatsPort = (*Store)(nil)
)
