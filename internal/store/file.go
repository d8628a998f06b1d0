package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cryptofolio/internal/models"
)

// SnapshotName is the durable slot the holdings list is serialized under,
// kept from the original web app's storage key.
const SnapshotName = "cripto_portfolio"

// FileSnapshot persists the holdings list as a JSON file.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot creates a file-backed snapshotter rooted at dir.
func NewFileSnapshot(dir string) (*FileSnapshot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileSnapshot{path: filepath.Join(dir, SnapshotName+".json")}, nil
}

// Save writes the full holdings list, using a temp file and rename so a
// crash mid-write cannot corrupt the previous snapshot.
func (f *FileSnapshot) Save(holdings []models.Holding) error {
	if holdings == nil {
		holdings = []models.Holding{}
	}

	data, err := json.MarshalIndent(holdings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding holdings: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file is not an error and yields an
// empty list; an unparseable file is reported so the caller can warn.
func (f *FileSnapshot) Load() ([]models.Holding, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var holdings []models.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return holdings, nil
}

// Close is a no-op for the file backend.
func (f *FileSnapshot) Close() error {
	return nil
}
