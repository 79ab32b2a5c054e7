package nakama

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// fakeStorage implements storageAPI in memory with Nakama's conditional
// write semantics: "" always writes, "*" only creates, anything else must
// match the stored version.
type fakeStorage struct {
	objects      map[string]*api.StorageObject
	writes       int
	readErr      error
	writeErr     error
	rejectWrites int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]*api.StorageObject)}
}

func storageObjectKey(collection, key, userID string) string {
	return collection + "/" + key + "/" + userID
}

func (f *fakeStorage) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]*api.StorageObject, 0, len(reads))
	for _, r := range reads {
		if obj, ok := f.objects[storageObjectKey(r.Collection, r.Key, r.UserID)]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeStorage) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := storageObjectKey(w.Collection, w.Key, w.UserID)
		existing, exists := f.objects[k]
		if w.Version == "*" && exists {
			return nil, runtime.ErrStorageRejectedVersion
		}
		if w.Version != "" && w.Version != "*" && (!exists || existing.Version != w.Version) {
			return nil, runtime.ErrStorageRejectedVersion
		}
		if f.rejectWrites > 0 {
			f.rejectWrites--
			return nil, runtime.ErrStorageRejectedVersion
		}

		f.writes++
		version := fmt.Sprintf("v%d", f.writes)
		f.objects[k] = &api.StorageObject{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Value:      w.Value,
			Version:    version,
		}
		acks = append(acks, &api.StorageObjectAck{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Version:    version,
		})
	}
	return acks, nil
}

func (f *fakeStorage) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	for _, d := range deletes {
		delete(f.objects, storageObjectKey(d.Collection, d.Key, d.UserID))
	}
	return nil
}

func TestSaveAdapterRoundTrip(t *testing.T) {
	adapter := &NakamaSaveAdapter{nk: newFakeStorage()}
	ctx := context.Background()
	blob := []byte{0x08, 0x01, 0xff, 0x00}

	version, err := adapter.Save(ctx, "user-1", blob, ports.VersionAny)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if version == "" {
		t.Fatal("Expected a concrete version from Save")
	}

	saved, err := adapter.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(saved.Blob) != string(blob) {
		t.Fatalf("Loaded blob %v, want %v", saved.Blob, blob)
	}
	if saved.Version != version {
		t.Fatalf("Loaded version %q, want %q", saved.Version, version)
	}
}

func TestSaveAdapterLoadMissing(t *testing.T) {
	adapter := &NakamaSaveAdapter{nk: newFakeStorage()}

	_, err := adapter.Load(context.Background(), "user-1")
	if !errors.Is(err, ports.ErrNoSave) {
		t.Fatalf("Expected ErrNoSave, got %v", err)
	}
}

func TestSaveAdapterVersionConflicts(t *testing.T) {
	adapter := &NakamaSaveAdapter{nk: newFakeStorage()}
	ctx := context.Background()

	v1, err := adapter.Save(ctx, "user-1", []byte{1}, ports.VersionCreate)
	if err != nil {
		t.Fatalf("Create save returned error: %v", err)
	}

	// A second create must fail: the slot is taken.
	if _, err := adapter.Save(ctx, "user-1", []byte{2}, ports.VersionCreate); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("Expected ErrVersionConflict on second create, got %v", err)
	}

	v2, err := adapter.Save(ctx, "user-1", []byte{3}, v1)
	if err != nil {
		t.Fatalf("Conditional save returned error: %v", err)
	}
	if v2 == v1 {
		t.Fatal("Expected the version to advance on write")
	}

	// Writing under the superseded version must fail.
	if _, err := adapter.Save(ctx, "user-1", []byte{4}, v1); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("Expected ErrVersionConflict on stale version, got %v", err)
	}

	saved, err := adapter.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(saved.Blob) != string([]byte{3}) {
		t.Fatalf("Conflicting write landed: blob %v", saved.Blob)
	}
}

func TestSaveAdapterDelete(t *testing.T) {
	adapter := &NakamaSaveAdapter{nk: newFakeStorage()}
	ctx := context.Background()

	if _, err := adapter.Save(ctx, "user-1", []byte{1}, ports.VersionAny); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := adapter.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := adapter.Load(ctx, "user-1"); !errors.Is(err, ports.ErrNoSave) {
		t.Fatalf("Expected ErrNoSave after delete, got %v", err)
	}

	// Deleting a missing save is not an error.
	if err := adapter.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete of missing save returned error: %v", err)
	}
}
