package local

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// snapshotKey is the single fixed key holding the serialized engine image.
// There is exactly one slot per client: no versioning, no history.
const snapshotKey = "travelog.snapshot"

// slotStore is the client-local durable key/value slot backing snapshot
// persistence. The engine image is text-encoded before storage and written
// atomically via a temp file rename.
type slotStore struct {
	fs  afero.Afero
	dir string
}

func newSlotStore(fs afero.Fs, dir string) *slotStore {
	return &slotStore{fs: afero.Afero{Fs: fs}, dir: dir}
}

func (st *slotStore) path() string {
	return filepath.Join(st.dir, snapshotKey)
}

// Put replaces the slot contents with the encoded image.
func (st *slotStore) Put(image []byte) error {
	if err := st.fs.MkdirAll(st.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot slot: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(image)
	tmp := st.path() + ".tmp"
	if err := st.fs.WriteFile(tmp, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("snapshot slot: %w", err)
	}
	if err := st.fs.Rename(tmp, st.path()); err != nil {
		return fmt.Errorf("snapshot slot: %w", err)
	}
	return nil
}

// Get returns the decoded image, or ok=false when no snapshot exists.
func (st *slotStore) Get() (image []byte, ok bool, err error) {
	encoded, err := st.fs.ReadFile(st.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("snapshot slot: %w", err)
	}
	image, err = base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, false, fmt.Errorf("snapshot slot: decode: %w", err)
	}
	return image, true, nil
}

// Reset removes the slot. Used when a stored snapshot cannot be restored.
func (st *slotStore) Reset() error {
	if err := st.fs.Remove(st.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot slot: %w", err)
	}
	return nil
}
