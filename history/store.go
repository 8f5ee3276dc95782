package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists a conversation transcript.
type Store interface {
	// Load reads the persisted transcript. An absent source yields an empty
	// History, not an error; a malformed source fails the load.
	Load(ctx context.Context) (*History, error)
	// Save writes the full transcript, replacing any previous one.
	Save(ctx context.Context, h *History) error
}

type fileStore struct {
	path string
}

// NewFileStore creates a Store backed by a single JSON transcript file.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Load(_ context.Context) (*History, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, s.path, err)
	}

	h, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, s.path, err)
	}
	return h, nil
}

// Save writes through a temp file and renames it into place so a failed
// write never truncates an existing transcript.
func (s *fileStore) Save(_ context.Context, h *History) error {
	data, err := Marshal(h)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path, err)
	}

	return nil
}
