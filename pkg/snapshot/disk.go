package snapshot

import (
	"context"
	"os"
	"path/filepath"
)

// DiskStore writes snapshots to a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore, creating dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the snapshot to dir/key.
func (s *DiskStore) Save(_ context.Context, key string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, filepath.Base(key)), data, 0644)
}
