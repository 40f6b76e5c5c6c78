package persist

import (
	"errors"

	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/memstore"
)

// MemoryFile is the snapshot path inside the workspace.
const MemoryFile = "memory/memory.dat"

// SaveMemory snapshots the whole store to the workspace.
func (f *Filesystem) SaveMemory(store *memstore.Store) error {
	data := store.Serialize()
	if err := f.WriteText(MemoryFile, data); err != nil {
		return err
	}
	f.logger.Info("memory snapshot saved",
		zap.String("path", MemoryFile),
		zap.Int("entries", store.Len()))
	return nil
}

// LoadMemory hydrates the store from the workspace snapshot. A missing
// snapshot is a fresh start, not an error.
func (f *Filesystem) LoadMemory(store *memstore.Store) error {
	data, err := f.ReadText(MemoryFile)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			f.logger.Info("no memory snapshot found, fresh start")
			return nil
		}
		return err
	}
	skipped := store.Deserialize(data)
	f.logger.Info("memory snapshot loaded",
		zap.Int("entries", store.Len()),
		zap.Int("skipped", skipped))
	return nil
}
