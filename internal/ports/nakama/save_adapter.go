package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageAPI is the slice of runtime.NakamaModule the storage adapters use.
type storageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error
}

// saveEnvelope wraps the serialized game for storage. Nakama values must be
// JSON, so the binary blob travels base64-encoded.
type saveEnvelope struct {
	Blob    []byte `json:"blob"`
	SavedAt string `json:"saved_at"`
}

// NakamaSaveAdapter implements ports.SavePort on Nakama storage. Object
// versions carry the conditional-write discipline: a stale writer gets
// ports.ErrVersionConflict instead of clobbering a newer save.
type NakamaSaveAdapter struct {
	nk storageAPI
}

// NewNakamaSaveAdapter creates a new save adapter.
func NewNakamaSaveAdapter(nk runtime.NakamaModule) *NakamaSaveAdapter {
	return &NakamaSaveAdapter{nk: nk}
}

// Load returns the user's current save, or ports.ErrNoSave.
func (a *NakamaSaveAdapter) Load(ctx context.Context, userID string) (ports.SavedGame, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{
			Collection: saveCollection,
			Key:        saveKey,
			UserID:     userID,
		},
	})
	if err != nil {
		return ports.SavedGame{}, fmt.Errorf("failed to read save: %w", err)
	}
	if len(objects) == 0 {
		return ports.SavedGame{}, ports.ErrNoSave
	}

	var envelope saveEnvelope
	if err := json.Unmarshal([]byte(objects[0].Value), &envelope); err != nil {
		return ports.SavedGame{}, fmt.Errorf("failed to unmarshal save envelope: %w", err)
	}

	return ports.SavedGame{
		Blob:    envelope.Blob,
		Version: objects[0].Version,
	}, nil
}

// Save writes the blob under the caller's version condition and returns the
// stored version.
func (a *NakamaSaveAdapter) Save(ctx context.Context, userID string, blob []byte, version string) (string, error) {
	value, err := json.Marshal(saveEnvelope{
		Blob:    blob,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal save envelope: %w", err)
	}

	acks, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      saveCollection,
			Key:             saveKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return "", ports.ErrVersionConflict
		}
		return "", fmt.Errorf("failed to write save: %w", err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("save write returned no ack")
	}

	return acks[0].Version, nil
}

// Delete removes the user's save. Deleting a missing save is not an error.
func (a *NakamaSaveAdapter) Delete(ctx context.Context, userID string) error {
	err := a.nk.StorageDelete(ctx, []*runtime.StorageDelete{
		{
			Collection: saveCollection,
			Key:        saveKey,
			UserID:     userID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

var _ ports.SavePort = (*NakamaSaveAdapter)(nil)
