package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/palette"
)

// FileStore keeps palettes in a single JSON file. The format matches the
// registry's export records keyed by sanitized id, so files are portable
// between machines and editable by hand.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the palette file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolving config directory")
	}
	return filepath.Join(dir, "pixelmill", "palettes.json"), nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) (map[string]palette.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]palette.Record{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", s.path)
	}
	var records map[string]palette.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing %s", s.path)
	}
	return records, nil
}

// Save implements Store. The file is written atomically via a temp file in
// the same directory, so a crash mid-write never corrupts the palette set.
func (s *FileStore) Save(_ context.Context, records map[string]palette.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding palettes")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "palettes-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "writing palettes")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "replacing %s", s.path)
	}
	return nil
}
