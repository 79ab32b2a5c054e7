package ports

import (
	"context"
	"errors"
)

// Save version sentinels. Concrete version strings come from the store and
// are treated as opaque by callers.
const (
	// VersionAny writes regardless of the stored version.
	VersionAny = ""
	// VersionCreate writes only when no save exists yet.
	VersionCreate = "*"
)

var (
	// ErrNoSave is returned by Load when the user has no stored game.
	ErrNoSave = errors.New("no saved game")
	// ErrVersionConflict is returned by Save when the stored version does
	// not match the version the caller read.
	ErrVersionConflict = errors.New("save version conflict")
)

// SavedGame is an opaque serialized game plus its storage version.
type SavedGame struct {
	Blob    []byte
	Version string
}

// SavePort persists at most one current game per user. Writes are
// conditional on the version so a stale writer cannot clobber a newer save.
type SavePort interface {
	// Load returns the user's current save, or ErrNoSave.
	Load(ctx context.Context, userID string) (SavedGame, error)

	// Save stores the blob under the version rules above and returns the
	// new version. Returns ErrVersionConflict when the condition fails.
	Save(ctx context.Context, userID string, blob []byte, version string) (string, error)

	// Delete removes the user's save. Deleting a missing save is not an
	// error.
	Delete(ctx context.Context, userID string) error
}
