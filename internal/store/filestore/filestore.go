// Package filestore persists the history document as a single JSON file.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yiblet/cliphist/internal/store"
)

// FileStore implements store.Persister on top of one JSON file. Every Save
// rewrites the file in full through a temporary file and a rename, so a
// reader never sees a partially written document.
type FileStore struct {
	path string
}

// New creates a FileStore for the document at path. The file and its
// directory are created on the first Save.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and parses the document.
func (f *FileStore) Load() (*store.Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNoDocument
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return store.Parse(data)
}

// Save replaces the document on disk.
func (f *FileStore) Save(doc *store.Document) error {
	data, err := store.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set history file mode: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Version returns the file's modification time and size. A missing file
// has version "".
func (f *FileStore) Version() (string, error) {
	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat history file: %w", err)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

// Close is a no-op; the file is not held open between calls.
func (f *FileStore) Close() error {
	return nil
}
